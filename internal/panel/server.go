package panel

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/expressions"
	"github.com/rendis/flowpaper/internal/paper"
	"github.com/rendis/flowpaper/internal/streaming"
)

//go:embed templates static
var content embed.FS

// Source tags logs and events produced by panel requests.
const Source = "panel"

// PanelDeps holds the dependencies for the panel server.
type PanelDeps struct {
	Graph  *diagram.Graph
	Fitter *paper.Fitter
	Hub    streaming.EventHub
	Query  *expressions.GoJQEngine
	Logger *slog.Logger

	// DefaultWidth and DefaultHeight size renderings requested without
	// explicit dimensions.
	DefaultWidth  int
	DefaultHeight int

	// BinDir is searched for the mermaid-ascii binary.
	BinDir string
}

// PanelServer serves the paper page and its rendering API.
type PanelServer struct {
	deps  PanelDeps
	pages map[string]*template.Template
}

// NewPanelServer creates a new PanelServer with parsed templates.
func NewPanelServer(deps PanelDeps) *PanelServer {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if deps.Query == nil {
		deps.Query = expressions.NewGoJQEngine()
	}
	if deps.DefaultWidth <= 0 {
		deps.DefaultWidth = 1000
	}
	if deps.DefaultHeight <= 0 {
		deps.DefaultHeight = 800
	}

	funcMap := template.FuncMap{
		"json":     toJSON,
		"fmtFloat": fmtFloat,
	}

	base := template.Must(
		template.New("").Funcs(funcMap).ParseFS(content, "templates/base.html"),
	)

	pageFiles := []string{
		"paper.html",
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, pf := range pageFiles {
		clone := template.Must(base.Clone())
		pages[pf] = template.Must(clone.ParseFS(content, "templates/"+pf))
	}

	return &PanelServer{
		deps:  deps,
		pages: pages,
	}
}

// Handler returns the HTTP handler for the panel routes.
func (s *PanelServer) Handler() http.Handler {
	mux := http.NewServeMux()

	staticFS, _ := fs.Sub(content, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages.
	mux.HandleFunc("GET /{$}", s.handlePaper)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Renderings.
	mux.HandleFunc("GET /paper.svg", s.handlePaperSVG)
	mux.HandleFunc("GET /paper.png", s.handlePaperPNG)
	mux.HandleFunc("GET /diagram.mmd", s.handleMermaid)
	mux.HandleFunc("GET /diagram.txt", s.handleASCII)

	// API.
	mux.HandleFunc("GET /api/graph", s.handleGraph)
	mux.HandleFunc("GET /api/fit", s.handleFit)

	// SSE streams.
	mux.HandleFunc("GET /sse/events", s.handleSSEEvents)

	return s.withRequestContext(mux)
}

// renderPage executes a page template by name.
func (s *PanelServer) renderPage(w http.ResponseWriter, r *http.Request, page string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		s.deps.Logger.ErrorContext(r.Context(), "template not found", "page", page)
		http.Error(w, fmt.Sprintf("template %q not found", page), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "template render error", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
