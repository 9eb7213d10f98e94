package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/expressions"
	"github.com/rendis/flowpaper/internal/paper"
	"github.com/rendis/flowpaper/internal/streaming"
	"github.com/rendis/flowpaper/internal/validation"
)

// Source tags logs and events produced by MCP tool calls.
const Source = "mcp"

// FlowpaperServerDeps holds the dependencies for creating a FlowpaperServer.
type FlowpaperServerDeps struct {
	Graph     *diagram.Graph
	Fitter    *paper.Fitter
	Hub       streaming.EventHub
	Query     *expressions.GoJQEngine
	Validator validation.Validator
	Logger    *slog.Logger

	DefaultWidth  int
	DefaultHeight int
	BinDir        string
	Version       string
}

// FlowpaperServer wraps an MCP server with diagram tool handlers.
type FlowpaperServer struct {
	graph     *diagram.Graph
	fitter    *paper.Fitter
	hub       streaming.EventHub
	query     *expressions.GoJQEngine
	validator validation.Validator
	logger    *slog.Logger

	defaultWidth  int
	defaultHeight int
	binDir        string

	watchers  *SessionRegistry
	notifier  *MCPNotifier
	mcpServer *server.MCPServer
}

// NewFlowpaperServer creates a new FlowpaperServer with all tools registered.
func NewFlowpaperServer(deps FlowpaperServerDeps) *FlowpaperServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	query := deps.Query
	if query == nil {
		query = expressions.NewGoJQEngine()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &FlowpaperServer{
		graph:         deps.Graph,
		fitter:        deps.Fitter,
		hub:           deps.Hub,
		query:         query,
		validator:     deps.Validator,
		logger:        logger,
		defaultWidth:  orDefault(deps.DefaultWidth, 1000),
		defaultHeight: orDefault(deps.DefaultHeight, 800),
		binDir:        deps.BinDir,
		watchers:      NewSessionRegistry(),
	}

	mcpSrv := server.NewMCPServer(
		"flowpaper",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowpaper serves an order-fulfillment flowchart. Use flowpaper.diagram to render it (ascii, mermaid, svg, png, graphviz), flowpaper.fit to compute the paper transform for a viewport, flowpaper.query to run jq over the graph document, and flowpaper.validate to check the graph."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	s.notifier = NewMCPNotifier(mcpSrv, s.watchers)
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or
// stdin closes. Paper events are forwarded to watching sessions meanwhile.
func (s *FlowpaperServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.hub != nil {
		go s.forwardEvents(ctx)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *FlowpaperServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// forwardEvents pushes every paper_fitted event to the watching sessions
// until ctx ends.
func (s *FlowpaperServer) forwardEvents(ctx context.Context) {
	ch, unsubscribe, err := s.hub.Subscribe(ctx, streaming.EventFilter{})
	if err != nil {
		s.logger.WarnContext(ctx, "mcp event forwarding disabled", "error", err)
		return
	}
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := s.notifier.NotifyAll(ctx, eventPayload(ev)); err != nil {
				s.logger.DebugContext(ctx, "mcp notification failed", "error", err)
			}
		}
	}
}

func eventPayload(ev streaming.StreamEvent) map[string]any {
	return map[string]any{
		"level":  "info",
		"logger": "flowpaper",
		"data": map[string]any{
			"source":     ev.Source,
			"event_type": ev.EventType,
			"payload":    ev.Payload,
		},
	}
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *FlowpaperServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: diagramTool(), Handler: s.handleDiagram},
		{Tool: fitTool(), Handler: s.handleFit},
		{Tool: queryTool(), Handler: s.handleQuery},
		{Tool: validateTool(), Handler: s.handleValidate},
	}
}

// --- Tool definitions ---

func diagramTool() mcp.Tool {
	return mcp.NewTool("flowpaper.diagram",
		mcp.WithDescription("Render the flowchart. Returns ASCII art, Mermaid flowchart syntax, SVG markup, or a PNG image"),
		mcp.WithString("format", mcp.Required(),
			mcp.Enum("ascii", "mermaid", "svg", "png", "graphviz"),
			mcp.Description("Output format: ascii, mermaid, svg (fitted paper), png (fitted paper), or graphviz (neato PNG)"),
		),
		mcp.WithNumber("width", mcp.Description("Viewport width in pixels for svg and png (default from config)")),
		mcp.WithNumber("height", mcp.Description("Viewport height in pixels for svg and png (default from config)")),
	)
}

func fitTool() mcp.Tool {
	return mcp.NewTool("flowpaper.fit",
		mcp.WithDescription("Fit the paper to a viewport and return its scale and translation"),
		mcp.WithNumber("width", mcp.Required(), mcp.Description("Viewport width in pixels")),
		mcp.WithNumber("height", mcp.Required(), mcp.Description("Viewport height in pixels")),
		mcp.WithBoolean("watch", mcp.Description("Receive a notification on every later fit from any surface")),
	)
}

func queryTool() mcp.Tool {
	return mcp.NewTool("flowpaper.query",
		mcp.WithDescription("Run a jq filter over the graph document"),
		mcp.WithString("filter", mcp.Required(),
			mcp.Description(`jq filter, e.g. [.cells[] | select(.kind == "decision") | .label]`),
		),
	)
}

func validateTool() mcp.Tool {
	return mcp.NewTool("flowpaper.validate",
		mcp.WithDescription("Validate the graph structure and its JSON document"),
	)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
