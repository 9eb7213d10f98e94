package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/logging"
	"github.com/rendis/flowpaper/internal/streaming"
	"github.com/rendis/flowpaper/pkg/schema"
)

// handleDiagram renders the flowchart in the requested format.
func (s *FlowpaperServer) handleDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("format is required"), nil
	}
	ctx = logging.WithSource(ctx, Source)

	switch format {
	case "ascii":
		return mcp.NewToolResultText(diagram.RenderASCIIAuto(ctx, s.graph, s.binDir)), nil
	case "mermaid":
		return mcp.NewToolResultText(diagram.RenderMermaid(s.graph)), nil
	case "svg", "png":
		width := req.GetInt("width", s.defaultWidth)
		height := req.GetInt("height", s.defaultHeight)
		out, err := s.renderFitted(ctx, format, width, height)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("%s render failed: %v", format, err)), nil
		}
		if format == "svg" {
			return mcp.NewToolResultText(string(out)), nil
		}
		return mcp.NewToolResultImage("fitted paper", base64.StdEncoding.EncodeToString(out), "image/png"), nil
	case "graphviz":
		out, err := diagram.RenderGraphviz(ctx, s.graph, diagram.GraphvizPNG)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("graphviz render failed: %v", err)), nil
		}
		return mcp.NewToolResultImage("graphviz layout", base64.StdEncoding.EncodeToString(out), "image/png"), nil
	default:
		return mcp.NewToolResultError("format must be ascii, mermaid, svg, png, or graphviz"), nil
	}
}

// renderFitted fits the paper to width x height and renders through the
// resulting transform.
func (s *FlowpaperServer) renderFitted(ctx context.Context, format string, width, height int) ([]byte, error) {
	if s.fitter == nil {
		return nil, schema.NewError(schema.ErrCodeNotFound, "no paper configured")
	}
	t, err := s.fitter.Fit(ctx, width, height)
	if err != nil {
		return nil, err
	}
	view := diagram.View{Width: t.Width, Height: t.Height, Matrix: t.Matrix()}

	var out []byte
	if format == "svg" {
		out, err = diagram.RenderSVG(ctx, s.graph, view)
	} else {
		out, err = diagram.RenderPNG(ctx, s.graph, view)
	}
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		_ = s.hub.Publish(ctx, streaming.StreamEvent{
			Source:    Source,
			EventType: schema.EventPaperRendered,
			Payload: map[string]any{
				"format": format,
				"width":  t.Width,
				"height": t.Height,
				"scale":  t.Scale,
			},
		})
	}
	return out, nil
}

// handleFit fits the paper to a viewport and returns the transform.
func (s *FlowpaperServer) handleFit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	width, err := req.RequireInt("width")
	if err != nil {
		return mcp.NewToolResultError("width is required"), nil
	}
	height, err := req.RequireInt("height")
	if err != nil {
		return mcp.NewToolResultError("height is required"), nil
	}
	if s.fitter == nil {
		return mcp.NewToolResultError("no paper configured"), nil
	}

	if req.GetBool("watch", false) {
		s.captureSession(ctx)
	}

	t, fitErr := s.fitter.Fit(logging.WithSource(ctx, Source), width, height)
	if fitErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fit failed: %v", fitErr)), nil
	}
	return marshalResult(t)
}

// handleQuery runs a jq filter over the graph document.
func (s *FlowpaperServer) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := req.RequireString("filter")
	if err != nil {
		return mcp.NewToolResultError("filter is required"), nil
	}

	data, err := diagram.Document(s.graph).Map()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("document export failed: %v", err)), nil
	}
	results, err := s.query.EvaluateAll(ctx, filter, data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if results == nil {
		results = []any{}
	}
	return marshalResult(map[string]any{
		"filter":  filter,
		"results": results,
	})
}

// handleValidate reports schema violations and graph issues.
func (s *FlowpaperServer) handleValidate(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.validator == nil {
		return mcp.NewToolResultError("no validator configured"), nil
	}

	result := s.validator.Validate(s.graph)
	return marshalResult(map[string]any{
		"valid":    result.Valid(),
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
}

// captureSession registers the calling session for paper event notifications.
func (s *FlowpaperServer) captureSession(ctx context.Context) {
	if session := server.ClientSessionFromContext(ctx); session != nil {
		s.watchers.Register(session.SessionID())
	}
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
