package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/rendis/flowpaper/internal/paper"
)

// Config holds all flowpaper configuration.
// Priority: env vars > .env > settings.json > defaults.
type Config struct {
	ListenAddr    string  `json:"listen_addr" validate:"required,hostname_port|startswith=:"`
	LogLevel      string  `json:"log_level" validate:"oneof=debug info warn warning error"`
	Padding       float64 `json:"padding" validate:"gte=0,lte=1000"`
	MaxDimension  int     `json:"max_dimension" validate:"gt=0,lte=20000"`
	DefaultWidth  int     `json:"default_width" validate:"gt=0,lte=20000,ltefield=MaxDimension"`
	DefaultHeight int     `json:"default_height" validate:"gt=0,lte=20000,ltefield=MaxDimension"`
	TraceOutput   string  `json:"trace_output,omitempty"`
	BinDir        string  `json:"bin_dir" validate:"required"`
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func defaultConfig() Config {
	return Config{
		ListenAddr:    ":4200",
		LogLevel:      "info",
		Padding:       40,
		DefaultWidth:  1000,
		DefaultHeight: 800,
		MaxDimension:  paper.DefaultMaxDimension,
		BinDir:        filepath.Join(flowpaperDir(), "bin"),
	}
}

func flowpaperDir() string {
	if v := os.Getenv("FLOWPAPER_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowpaper"
	}
	return filepath.Join(home, ".flowpaper")
}

func settingsPath() string {
	return filepath.Join(flowpaperDir(), "settings.json")
}

func pidPath() string {
	return filepath.Join(flowpaperDir(), "flowpaper.pid")
}

// loadConfig layers the configuration sources and validates the result.
func loadConfig() (Config, error) {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", settingsPath(), err)
		}
	}

	// Layer 3: .env in the working directory. Existing env vars win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	// Layer 4: env vars override.
	if err := applyEnv(&cfg, os.Getenv); err != nil {
		return Config{}, err
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("FLOWPAPER_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("FLOWPAPER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("FLOWPAPER_PADDING"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: FLOWPAPER_PADDING %q: %w", v, err)
		}
		cfg.Padding = n
	}
	if v := getenv("FLOWPAPER_DEFAULT_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: FLOWPAPER_DEFAULT_WIDTH %q: %w", v, err)
		}
		cfg.DefaultWidth = n
	}
	if v := getenv("FLOWPAPER_DEFAULT_HEIGHT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: FLOWPAPER_DEFAULT_HEIGHT %q: %w", v, err)
		}
		cfg.DefaultHeight = n
	}
	if v := getenv("FLOWPAPER_MAX_DIMENSION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: FLOWPAPER_MAX_DIMENSION %q: %w", v, err)
		}
		cfg.MaxDimension = n
	}
	if v := getenv("FLOWPAPER_TRACE_OUTPUT"); v != "" {
		cfg.TraceOutput = v
	}
	if v := getenv("FLOWPAPER_BIN_DIR"); v != "" {
		cfg.BinDir = v
	}
	return nil
}

func validateConfig(cfg Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// configDiff describes what changed between two configurations.
type configDiff struct {
	LogLevelChanged bool
	PanelChanged    bool     // padding, sizes or bin dir: the panel is rebuilt
	RestartNeeded   []string // fields that require a server restart
}

func diffConfigs(old, new Config) configDiff {
	var d configDiff
	if old.LogLevel != new.LogLevel {
		d.LogLevelChanged = true
	}
	if old.Padding != new.Padding || old.DefaultWidth != new.DefaultWidth ||
		old.DefaultHeight != new.DefaultHeight || old.MaxDimension != new.MaxDimension ||
		old.BinDir != new.BinDir {
		d.PanelChanged = true
	}
	if old.ListenAddr != new.ListenAddr {
		d.RestartNeeded = append(d.RestartNeeded, "listen_addr")
	}
	if old.TraceOutput != new.TraceOutput {
		d.RestartNeeded = append(d.RestartNeeded, "trace_output")
	}
	return d
}
