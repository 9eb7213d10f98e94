package panel

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/paper"
	"github.com/rendis/flowpaper/internal/streaming"
	"github.com/rendis/flowpaper/internal/tracing"
	"github.com/rendis/flowpaper/pkg/schema"
)

// handleGraph returns the graph document, or the results of the jq filter
// in ?q= run over it.
func (s *PanelServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc := diagram.Document(s.deps.Graph)

	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusOK, doc)
		return
	}

	data, err := doc.Map()
	if err != nil {
		writeFlowError(w, err)
		return
	}
	results, err := s.deps.Query.EvaluateAll(ctx, q, data)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	if results == nil {
		results = []any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": results,
	})
}

// handleFit fits the paper to ?width= x ?height= and returns the transform.
func (s *PanelServer) handleFit(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.viewport(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	t, err := s.deps.Fitter.Fit(r.Context(), width, height)
	if err != nil {
		writeFlowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// handlePaperSVG renders the paper fitted to the requested size as SVG.
func (s *PanelServer) handlePaperSVG(w http.ResponseWriter, r *http.Request) {
	s.servePaper(w, r, "svg", "image/svg+xml", diagram.RenderSVG)
}

// handlePaperPNG renders the paper fitted to the requested size as PNG.
func (s *PanelServer) handlePaperPNG(w http.ResponseWriter, r *http.Request) {
	s.servePaper(w, r, "png", "image/png", diagram.RenderPNG)
}

type paperRenderer func(ctx context.Context, g *diagram.Graph, view diagram.View) ([]byte, error)

// servePaper is the common fit-then-render implementation.
func (s *PanelServer) servePaper(w http.ResponseWriter, r *http.Request, format, contentType string, render paperRenderer) {
	width, height, err := s.viewport(r)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	out, t, err := s.renderFitted(r.Context(), format, width, height, render)
	if err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "paper render failed", "format", format, "error", err)
		writeFlowError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(out)

	s.publishRendered(r.Context(), format, t)
}

// renderFitted fits the paper and renders the graph through its transform.
func (s *PanelServer) renderFitted(ctx context.Context, format string, width, height int, render paperRenderer) ([]byte, paper.Transform, error) {
	t, err := s.deps.Fitter.Fit(ctx, width, height)
	if err != nil {
		return nil, paper.Transform{}, err
	}

	ctx, span := tracing.StartSpan(ctx, "panel.render",
		attribute.String("render.format", format),
		attribute.Int("paper.width", width),
		attribute.Int("paper.height", height),
	)
	out, err := render(ctx, s.deps.Graph, diagram.View{
		Width:  t.Width,
		Height: t.Height,
		Matrix: t.Matrix(),
	})
	tracing.EndSpan(span, err)
	if err != nil {
		return nil, paper.Transform{}, err
	}
	return out, t, nil
}

func (s *PanelServer) publishRendered(ctx context.Context, format string, t paper.Transform) {
	if s.deps.Hub == nil {
		return
	}
	_ = s.deps.Hub.Publish(ctx, streaming.StreamEvent{
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

// handleMermaid serves the Mermaid flowchart source.
func (s *PanelServer) handleMermaid(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(diagram.RenderMermaid(s.deps.Graph)))
}

// handleASCII serves the terminal rendering, through mermaid-ascii when it
// is installed.
func (s *PanelServer) handleASCII(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(diagram.RenderASCIIAuto(r.Context(), s.deps.Graph, s.deps.BinDir)))
}
