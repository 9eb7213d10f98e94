package main

import (
	"fmt"
	"log/slog"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/expressions"
	"github.com/rendis/flowpaper/internal/paper"
	"github.com/rendis/flowpaper/internal/panel"
	"github.com/rendis/flowpaper/internal/streaming"
	"github.com/rendis/flowpaper/internal/validation"
	mcpserver "github.com/rendis/flowpaper/pkg/mcp"
)

// app is the assembled runtime shared by every command: the diagram, its
// fitted paper and the services around them.
type app struct {
	cfg       Config
	logger    *slog.Logger
	graph     *diagram.Graph
	fitter    *paper.Fitter
	hub       *streaming.MemoryHub
	query     *expressions.GoJQEngine
	validator *validation.GraphValidator
}

// newApp assembles and validates the diagram, then binds a paper to its
// bbox. Any failure here is a startup fault.
func newApp(cfg Config, logger *slog.Logger) (*app, error) {
	f, err := diagram.OrderFulfillment()
	if err != nil {
		return nil, fmt.Errorf("assemble diagram: %w", err)
	}

	v, err := validation.NewGraphValidator()
	if err != nil {
		return nil, fmt.Errorf("init validator: %w", err)
	}
	result := v.Validate(f.Graph)
	if !result.Valid() {
		return nil, fmt.Errorf("validate diagram: %w", result.ToError())
	}
	for _, w := range result.Warnings {
		logger.Warn("diagram warning", "path", w.Path, "code", w.Code, "message", w.Message)
	}

	hub := streaming.NewMemoryHub()
	fitter, err := newFitter(cfg, logger, f.Graph, hub)
	if err != nil {
		return nil, err
	}

	logger.Debug("diagram assembled",
		"elements", len(f.Graph.Elements()),
		"links", len(f.Graph.Links()),
		"bbox", f.Graph.BBox().String(),
	)

	return &app{
		cfg:       cfg,
		logger:    logger,
		graph:     f.Graph,
		fitter:    fitter,
		hub:       hub,
		query:     expressions.NewGoJQEngine(),
		validator: v,
	}, nil
}

func newFitter(cfg Config, logger *slog.Logger, g *diagram.Graph, hub streaming.EventHub) (*paper.Fitter, error) {
	p, err := paper.New(cfg.DefaultWidth, cfg.DefaultHeight)
	if err != nil {
		return nil, fmt.Errorf("init paper: %w", err)
	}
	fitter, err := paper.NewFitter(p, g.BBox(),
		paper.WithPadding(cfg.Padding),
		paper.WithMaxDimension(cfg.MaxDimension),
		paper.WithLogger(logger),
		paper.WithHub(hub),
	)
	if err != nil {
		return nil, fmt.Errorf("init fitter: %w", err)
	}
	return fitter, nil
}

// panelHandler builds the panel for cfg. A reload calls it again with the
// new config; the graph and hub are kept.
func (a *app) panelHandler(cfg Config) (*panel.PanelServer, error) {
	fitter := a.fitter
	if cfg.Padding != a.cfg.Padding || cfg.MaxDimension != a.cfg.MaxDimension {
		var err error
		fitter, err = newFitter(cfg, a.logger, a.graph, a.hub)
		if err != nil {
			return nil, err
		}
	}
	return panel.NewPanelServer(panel.PanelDeps{
		Graph:         a.graph,
		Fitter:        fitter,
		Hub:           a.hub,
		Query:         a.query,
		Logger:        a.logger,
		DefaultWidth:  cfg.DefaultWidth,
		DefaultHeight: cfg.DefaultHeight,
		BinDir:        cfg.BinDir,
	}), nil
}

func (a *app) mcpServer() *mcpserver.FlowpaperServer {
	return mcpserver.NewFlowpaperServer(mcpserver.FlowpaperServerDeps{
		Graph:         a.graph,
		Fitter:        a.fitter,
		Hub:           a.hub,
		Query:         a.query,
		Validator:     a.validator,
		Logger:        a.logger,
		DefaultWidth:  a.cfg.DefaultWidth,
		DefaultHeight: a.cfg.DefaultHeight,
		BinDir:        a.cfg.BinDir,
		Version:       version,
	})
}
