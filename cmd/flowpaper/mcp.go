package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rendis/flowpaper/internal/logging"
	"github.com/rendis/flowpaper/internal/tracing"
)

// runMCP serves the MCP tools over stdio until stdin closes or a signal
// arrives. Stdout belongs to the protocol, so logs and traces go to stderr.
func runMCP() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := logging.NewLogger(os.Stderr, cfg.LogLevel)

	traceOutput := cfg.TraceOutput
	if traceOutput == "stdout" {
		traceOutput = "stderr"
	}
	shutdownTracing, err := tracing.Init("flowpaper", version, traceOutput)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("flowpaper mcp server on stdio", "version", version)
	return a.mcpServer().Serve(ctx)
}
