package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rendis/flowpaper/internal/logging"
	"github.com/rendis/flowpaper/internal/tracing"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listenAddr := fs.String("listen-addr", "", "TCP listen address (overrides config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	level := new(slog.LevelVar)
	level.Set(logging.ParseLevel(cfg.LogLevel))
	logger := logging.NewLevelLogger(os.Stderr, level)
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Init("flowpaper", version, cfg.TraceOutput)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	panelSrv, err := a.panelHandler(cfg)
	if err != nil {
		return err
	}
	swapper := newHandlerSwapper(panelSrv.Handler())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           swapper,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := writePidFile(); err != nil {
		logger.Warn("cannot write pidfile", "path", pidPath(), "error", err)
	}
	defer os.Remove(pidPath())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("flowpaper panel listening", "addr", cfg.ListenAddr, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		case <-hup:
			cfg = reloadConfig(a, cfg, level, swapper, logger)
		}
	}
}

// reloadConfig re-reads the configuration and applies what can change at
// runtime. It returns the config now in effect.
func reloadConfig(a *app, current Config, level *slog.LevelVar, swapper *handlerSwapper, logger *slog.Logger) Config {
	next, err := loadConfig()
	if err != nil {
		logger.Error("config reload failed, keeping current config", "error", err)
		return current
	}

	diff := diffConfigs(current, next)
	if diff.LogLevelChanged {
		level.Set(logging.ParseLevel(next.LogLevel))
		logger.Info("log level changed", "level", next.LogLevel)
	}
	if diff.PanelChanged {
		panelSrv, err := a.panelHandler(next)
		if err != nil {
			logger.Error("panel rebuild failed, keeping current panel", "error", err)
			return current
		}
		swapper.Swap(panelSrv.Handler())
		logger.Info("panel reloaded",
			"padding", next.Padding,
			"default_width", next.DefaultWidth,
			"default_height", next.DefaultHeight,
			"max_dimension", next.MaxDimension,
		)
	}
	for _, field := range diff.RestartNeeded {
		logger.Warn("config change requires restart", "field", field)
	}

	// Fields that need a restart keep their running value.
	next.ListenAddr = current.ListenAddr
	next.TraceOutput = current.TraceOutput
	return next
}

func writePidFile() error {
	if err := os.MkdirAll(flowpaperDir(), 0o700); err != nil {
		return err
	}
	return os.WriteFile(pidPath(), []byte(strconv.Itoa(os.Getpid())), 0o644)
}
