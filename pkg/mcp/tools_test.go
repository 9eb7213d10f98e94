package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/paper"
	"github.com/rendis/flowpaper/internal/streaming"
	"github.com/rendis/flowpaper/internal/validation"
	"github.com/rendis/flowpaper/pkg/schema"
)

// --- Helper ---

func newTestServer(t *testing.T, hub streaming.EventHub) *FlowpaperServer {
	t.Helper()
	g := diagram.MustOrderFulfillment().Graph
	p, err := paper.New(1000, 800)
	require.NoError(t, err)
	opts := []paper.Option{}
	if hub != nil {
		opts = append(opts, paper.WithHub(hub))
	}
	fitter, err := paper.NewFitter(p, g.BBox(), opts...)
	require.NoError(t, err)
	v, err := validation.NewGraphValidator()
	require.NoError(t, err)

	return NewFlowpaperServer(FlowpaperServerDeps{
		Graph:     g,
		Fitter:    fitter,
		Hub:       hub,
		Validator: v,
	})
}

func buildRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

// --- Tests ---

func TestDiagramTool_ASCII(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{"format": "ascii"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	text := extractText(t, result)
	assert.Contains(t, text, "Transitions:")
	assert.Contains(t, text, "Quality Check?")
}

func TestDiagramTool_Mermaid(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{"format": "mermaid"}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	text := extractText(t, result)
	assert.True(t, strings.HasPrefix(text, "graph TD"))
	assert.Contains(t, text, `-->|Not Ok|`)
}

func TestDiagramTool_SVG(t *testing.T) {
	hub := streaming.NewMemoryHub()
	s := newTestServer(t, hub)

	ch, cancel, err := hub.Subscribe(context.Background(), streaming.EventFilter{
		EventTypes: []string{schema.EventPaperRendered},
	})
	require.NoError(t, err)
	defer cancel()

	result, err := s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{
		"format": "svg", "width": 500, "height": 400,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractText(t, result)
	s2 := math.Min(420.0/790, 320.0/470)
	assert.Contains(t, text, `width="500" height="400"`)
	assert.Contains(t, text, schema.Matrix{SX: s2, SY: s2, TY: 200 - 285*s2}.SVG())

	ev := <-ch
	assert.Equal(t, Source, ev.Source)
}

func TestDiagramTool_PNG(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{
		"format": "png", "width": 320, "height": 240,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	img := extractImage(t, result)
	assert.Equal(t, "image/png", img.MIMEType)
	data, err := base64.StdEncoding.DecodeString(img.Data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")))
}

func TestDiagramTool_InvalidViewport(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{
		"format": "svg", "width": 0, "height": 400,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), schema.ErrCodeInvalidViewport)
}

func TestDiagramTool_OversizedViewport(t *testing.T) {
	s := newTestServer(t, nil)

	for _, format := range []string{"png", "svg"} {
		result, err := s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{
			"format": format, "width": 60000, "height": 60000,
		}))
		require.NoError(t, err)
		assert.True(t, result.IsError, format)
		assert.Contains(t, extractText(t, result), schema.ErrCodeInvalidViewport, format)
	}

	result, err := s.handleFit(context.Background(), buildRequest("flowpaper.fit", map[string]any{
		"width": 2000000000, "height": 2000000000,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), schema.ErrCodeInvalidViewport)
}

func TestDiagramTool_BadFormat(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{"format": "gif"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleDiagram(context.Background(), buildRequest("flowpaper.diagram", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFitTool(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleFit(context.Background(), buildRequest("flowpaper.fit", map[string]any{
		"width": 1000, "height": 800,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var tr paper.Transform
	unmarshalResult(t, result, &tr)
	s1 := math.Min(920.0/790, 720.0/470)
	assert.InDelta(t, s1, tr.Scale, 1e-9)
	assert.Zero(t, tr.TX)
	assert.InDelta(t, 400-285*s1, tr.TY, 1e-9)
	assert.False(t, s.watchers.Watching(""), "no session in context")
}

func TestFitTool_MissingParams(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleFit(context.Background(), buildRequest("flowpaper.fit", map[string]any{"width": 100}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFitTool_Rejected(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleFit(context.Background(), buildRequest("flowpaper.fit", map[string]any{
		"width": 50, "height": 50,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), schema.ErrCodeInvalidViewport)
}

func TestQueryTool(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleQuery(context.Background(), buildRequest("flowpaper.query", map[string]any{
		"filter": `.cells[] | select(.kind == "flow" and .label != null) | .label`,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		Results []string `json:"results"`
	}
	unmarshalResult(t, result, &out)
	assert.Equal(t, []string{"No", "Yes", "Ok", "Not Ok"}, out.Results)
}

func TestQueryTool_Errors(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleQuery(context.Background(), buildRequest("flowpaper.query", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleQuery(context.Background(), buildRequest("flowpaper.query", map[string]any{"filter": ".cells[ |"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(t, result), schema.ErrCodeExpression)
}

func TestValidateTool(t *testing.T) {
	s := newTestServer(t, nil)

	result, err := s.handleValidate(context.Background(), buildRequest("flowpaper.validate", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		Valid  bool              `json:"valid"`
		Errors []json.RawMessage `json:"errors"`
	}
	unmarshalResult(t, result, &out)
	assert.True(t, out.Valid)
	assert.Empty(t, out.Errors)
}

func TestValidateTool_NoValidator(t *testing.T) {
	s := NewFlowpaperServer(FlowpaperServerDeps{Graph: diagram.MustOrderFulfillment().Graph})

	result, err := s.handleValidate(context.Background(), buildRequest("flowpaper.validate", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

// --- Test helpers ---

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	return mcp.GetTextFromContent(result.Content[0])
}

func extractImage(t *testing.T, result *mcp.CallToolResult) mcp.ImageContent {
	t.Helper()
	for _, c := range result.Content {
		if img, ok := mcp.AsImageContent(c); ok {
			return *img
		}
	}
	t.Fatal("no image content in result")
	return mcp.ImageContent{}
}

func unmarshalResult(t *testing.T, result *mcp.CallToolResult, target any) {
	t.Helper()
	text := extractText(t, result)
	require.NoError(t, json.Unmarshal([]byte(text), target))
}
