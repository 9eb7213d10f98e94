package panel

import (
	"html/template"
	"net/http"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/paper"
	"github.com/rendis/flowpaper/pkg/schema"
)

// --- Page data types ---

type pageData struct {
	Title  string
	Active string
}

type paperData struct {
	pageData
	// SVG is the paper fitted to the default size; the page script refits
	// it to the real container on load.
	SVG       template.HTML
	Transform paper.Transform
	BBox      schema.Rect
	Elements  int
	Links     int
}

// --- Page handlers ---

func (s *PanelServer) handlePaper(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g := s.deps.Graph

	svg, t, err := s.renderFitted(ctx, "svg", s.deps.DefaultWidth, s.deps.DefaultHeight, diagram.RenderSVG)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "paper page render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := paperData{
		pageData:  pageData{Title: g.Title, Active: "paper"},
		SVG:       template.HTML(svg),
		Transform: t,
		BBox:      s.deps.Fitter.BBox(),
		Elements:  len(g.Elements()),
		Links:     len(g.Links()),
	}
	s.renderPage(w, r, "paper.html", data)
}

func (s *PanelServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"elements": len(s.deps.Graph.Elements()),
		"links":    len(s.deps.Graph.Links()),
	})
}
