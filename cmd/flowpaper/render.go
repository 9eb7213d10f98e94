package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/logging"
	"github.com/rendis/flowpaper/pkg/schema"
)

// renderFormats lists the formats accepted by -format.
var renderFormats = []string{"svg", "png", "graphviz", "graphviz-svg", "dot", "mermaid", "ascii", "json"}

// commandApp assembles the runtime for a one-shot command, logging to stderr.
func commandApp(stderr io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logging.NewLogger(stderr, cfg.LogLevel))
}

func runRender(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "svg", fmt.Sprintf("output format: %v", renderFormats))
	width := fs.Int("width", 0, "viewport width for svg and png (default from config)")
	height := fs.Int("height", 0, "viewport height for svg and png (default from config)")
	out := fs.String("o", "", "output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := commandApp(stderr)
	if err != nil {
		return err
	}
	if *width == 0 {
		*width = a.cfg.DefaultWidth
	}
	if *height == 0 {
		*height = a.cfg.DefaultHeight
	}

	ctx := logging.WithSource(context.Background(), "cli")
	data, err := a.render(ctx, *format, *width, *height)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("render: write %s: %w", *out, err)
	}
	fmt.Fprintf(stderr, "wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

// render produces the graph in format; svg and png go through a fit.
func (a *app) render(ctx context.Context, format string, width, height int) ([]byte, error) {
	switch format {
	case "svg", "png":
		t, err := a.fitter.Fit(ctx, width, height)
		if err != nil {
			return nil, err
		}
		view := diagram.View{Width: t.Width, Height: t.Height, Matrix: t.Matrix()}
		if format == "svg" {
			return diagram.RenderSVG(ctx, a.graph, view)
		}
		return diagram.RenderPNG(ctx, a.graph, view)
	case "graphviz":
		return diagram.RenderGraphviz(ctx, a.graph, diagram.GraphvizPNG)
	case "graphviz-svg":
		return diagram.RenderGraphviz(ctx, a.graph, diagram.GraphvizSVG)
	case "dot":
		return []byte(diagram.RenderDOT(a.graph)), nil
	case "mermaid":
		return []byte(diagram.RenderMermaid(a.graph)), nil
	case "ascii":
		return []byte(diagram.RenderASCIIAuto(ctx, a.graph, a.cfg.BinDir)), nil
	case "json":
		data, err := json.MarshalIndent(diagram.Document(a.graph), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("render: encode document: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, schema.NewErrorf(schema.ErrCodeRender, "unknown format %q (want one of %v)", format, renderFormats)
	}
}
