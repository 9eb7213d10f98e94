package main

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rendis/flowpaper/internal/diagram"
)

const mermaidASCIIVersion = "1.1.0"

// mermaidASCIIChecksums pins the SHA-256 of each mermaid-ascii release asset,
// in shasum -a 256 format.
const mermaidASCIIChecksums = `
068d2ff869d4921655cab471500fffd8c3ed28155b100518ed3cf3835d53d3d0  mermaid-ascii_Darwin_arm64.tar.gz
0cd4c9c01a03284fe866f39a1ce1aaee1e6a2fbd91deedc4ec254cb87622eec8  mermaid-ascii_Darwin_x86_64.tar.gz
3b7d0a95141bfbca838e445ea802ffb7fba8873b3c4af498482c84f83526f2db  mermaid-ascii_Linux_arm64.tar.gz
838ea93d561b3bc83aa15531c6ed7d2d261a8edc521d5484f7e91fe831cc4c65  mermaid-ascii_Linux_x86_64.tar.gz
`

const mermaidASCIIReleaseURL = "https://github.com/AlexanderGrooff/mermaid-ascii/releases/download"

// runInstall writes settings.json from flags, installs mermaid-ascii and
// asks a running server to reload.
func runInstall(args []string, stdout, stderr io.Writer) error {
	defaults := defaultConfig()
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	fs.SetOutput(stderr)
	listenAddr := fs.String("listen-addr", defaults.ListenAddr, "TCP listen address")
	logLevel := fs.String("log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	padding := fs.Float64("padding", defaults.Padding, "paper padding in pixels")
	width := fs.Int("width", defaults.DefaultWidth, "default viewport width")
	height := fs.Int("height", defaults.DefaultHeight, "default viewport height")
	maxDim := fs.Int("max-dimension", defaults.MaxDimension, "largest viewport width or height served")
	traceOutput := fs.String("trace-output", "", "trace exporter output: stdout, stderr or a file path")
	skipTools := fs.Bool("skip-tools", false, "do not download mermaid-ascii")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir := flowpaperDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("install: create %s: %w", dir, err)
	}

	cfg := Config{
		ListenAddr:    *listenAddr,
		LogLevel:      *logLevel,
		Padding:       *padding,
		DefaultWidth:  *width,
		DefaultHeight: *height,
		MaxDimension:  *maxDim,
		TraceOutput:   *traceOutput,
		BinDir:        filepath.Join(dir, "bin"),
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	path := settingsPath()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("install: write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Config written to %s\n", path)

	if !*skipTools {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		client := &http.Client{Timeout: 60 * time.Second}
		dest, err := installMermaidASCII(ctx, client, mermaidASCIIReleaseURL, cfg.BinDir)
		if err != nil {
			fmt.Fprintf(stderr, "Warning: %v; ASCII diagrams will use the built-in renderer\n", err)
		} else {
			fmt.Fprintf(stdout, "mermaid-ascii available at %s\n", dest)
		}
	}

	if pid, ok := signalRunningServer(); ok {
		fmt.Fprintf(stdout, "Signaled running server (PID %d) to reload configuration\n", pid)
	}
	return nil
}

// signalRunningServer sends SIGHUP to the server named in the pidfile.
func signalRunningServer() (int, bool) {
	data, err := os.ReadFile(pidPath())
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, false
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return 0, false
	}
	if err := proc.Signal(syscall.SIGHUP); err != nil {
		return 0, false
	}
	return pid, true
}

// installMermaidASCII downloads, verifies and unpacks mermaid-ascii into
// binDir, returning the binary path. An existing binary is kept.
func installMermaidASCII(ctx context.Context, client httpDoer, baseURL, binDir string) (string, error) {
	destPath := filepath.Join(binDir, diagram.MermaidASCIIBinary)
	if _, err := os.Stat(destPath); err == nil {
		return destPath, nil
	}

	assetName, err := mermaidASCIIAssetName(runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return "", err
	}
	checksums, err := parseChecksumFile(strings.NewReader(mermaidASCIIChecksums))
	if err != nil {
		return "", err
	}
	expected, ok := checksums[assetName]
	if !ok {
		return "", fmt.Errorf("mermaid-ascii: no pinned checksum for %s", assetName)
	}

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return "", fmt.Errorf("mermaid-ascii: create %s: %w", binDir, err)
	}

	url := fmt.Sprintf("%s/%s/%s", baseURL, mermaidASCIIVersion, assetName)
	tmpPath, err := downloadToTempFile(ctx, client, url, binDir)
	if err != nil {
		return "", fmt.Errorf("mermaid-ascii: %w", err)
	}
	defer os.Remove(tmpPath)

	if err := verifyChecksum(tmpPath, expected); err != nil {
		return "", fmt.Errorf("mermaid-ascii %s: %w", assetName, err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := extractTarGz(f, binDir, diagram.MermaidASCIIBinary); err != nil {
		_ = os.Remove(destPath)
		return "", fmt.Errorf("mermaid-ascii: %w", err)
	}
	if err := os.Chmod(destPath, 0o755); err != nil {
		return "", err
	}
	return destPath, nil
}

// mermaidASCIIAssetName returns the release asset name for a platform.
func mermaidASCIIAssetName(goos, goarch string) (string, error) {
	var osName string
	switch goos {
	case "darwin":
		osName = "Darwin"
	case "linux":
		osName = "Linux"
	default:
		return "", fmt.Errorf("mermaid-ascii: unsupported OS %q", goos)
	}

	var archName string
	switch goarch {
	case "amd64":
		archName = "x86_64"
	case "arm64":
		archName = "arm64"
	default:
		return "", fmt.Errorf("mermaid-ascii: unsupported architecture %q", goarch)
	}

	return fmt.Sprintf("mermaid-ascii_%s_%s.tar.gz", osName, archName), nil
}

// extractTarGz extracts the regular file named targetName (at any depth)
// from a tar.gz archive into destDir.
func extractTarGz(r io.Reader, destDir, targetName string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("file %q not found in archive", targetName)
		}
		if err != nil {
			return fmt.Errorf("tar: %w", err)
		}
		if filepath.Base(hdr.Name) != targetName || hdr.Typeflag != tar.TypeReg {
			continue
		}

		destPath := filepath.Join(destDir, targetName)
		f, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o755)
		if err != nil {
			return fmt.Errorf("create %s: %w", destPath, err)
		}
		if _, err := io.Copy(f, tr); err != nil { //nolint:gosec // bounded by tar header size
			f.Close()
			return fmt.Errorf("write %s: %w", destPath, err)
		}
		return f.Close()
	}
}
