package paper

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rendis/flowpaper/internal/logging"
	"github.com/rendis/flowpaper/internal/streaming"
	"github.com/rendis/flowpaper/internal/tracing"
	"github.com/rendis/flowpaper/pkg/schema"
)

// DefaultPadding is the margin kept around the diagram when fitting.
const DefaultPadding = 40.0

// DefaultMaxDimension bounds the container width and height a fit accepts.
const DefaultMaxDimension = 8192

// Transform is the outcome of a fit: the container size and the uniform
// paper transform applied to it.
type Transform struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	TX     float64 `json:"tx"`
	TY     float64 `json:"ty"`
}

// Matrix returns the transform as a paper matrix.
func (t Transform) Matrix() schema.Matrix {
	return schema.Matrix{SX: t.Scale, SY: t.Scale, TX: t.TX, TY: t.TY}
}

// Fitter binds a paper to a content bbox computed once after the graph is
// assembled, and re-fits it whenever the container changes size.
type Fitter struct {
	paper   *Paper
	bbox    schema.Rect
	padding float64
	maxDim  int
	logger  *slog.Logger
	hub     streaming.EventHub

	// mu makes resize-scale-translate one step, so concurrent fits never
	// interleave.
	mu sync.Mutex
}

// Option configures a Fitter.
type Option func(*Fitter)

// WithPadding overrides DefaultPadding.
func WithPadding(padding float64) Option {
	return func(f *Fitter) { f.padding = padding }
}

// WithMaxDimension overrides DefaultMaxDimension. Non-positive values are
// ignored.
func WithMaxDimension(n int) Option {
	return func(f *Fitter) {
		if n > 0 {
			f.maxDim = n
		}
	}
}

// WithLogger sets the logger used for fit diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fitter) { f.logger = logger }
}

// WithHub publishes a paper_fitted event after every successful fit.
func WithHub(hub streaming.EventHub) Option {
	return func(f *Fitter) { f.hub = hub }
}

// NewFitter creates a fitter for bbox on p.
func NewFitter(p *Paper, bbox schema.Rect, opts ...Option) (*Fitter, error) {
	if bbox.Empty() {
		return nil, schema.NewErrorf(schema.ErrCodeInvalidViewport, "content bbox %s is degenerate", bbox)
	}
	f := &Fitter{
		paper:   p,
		bbox:    bbox,
		padding: DefaultPadding,
		maxDim:  DefaultMaxDimension,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Paper returns the paper the fitter drives.
func (f *Fitter) Paper() *Paper { return f.paper }

// BBox returns the content bbox the fitter centres.
func (f *Fitter) BBox() schema.Rect { return f.bbox }

// MaxDimension returns the largest container width or height Fit accepts.
func (f *Fitter) MaxDimension() int { return f.maxDim }

// Fit resizes the paper to width x height, scales the content bbox to fit
// inside the padding and centres it vertically. The horizontal translation
// is pinned to zero, so the diagram stays anchored to the left edge. The
// result depends only on the size, so repeating a fit changes nothing.
func (f *Fitter) Fit(ctx context.Context, width, height int) (Transform, error) {
	ctx = logging.WithViewport(ctx, width, height)
	ctx, span := tracing.StartSpan(ctx, "paper.fit",
		attribute.Int("paper.width", width),
		attribute.Int("paper.height", height),
	)

	t, err := f.fit(width, height)
	tracing.EndSpan(span, err)
	if err != nil {
		f.logger.WarnContext(ctx, "paper fit rejected", slog.String("error", err.Error()))
		return Transform{}, err
	}

	f.logger.DebugContext(ctx, "paper fitted",
		slog.Float64("scale", t.Scale),
		slog.Float64("tx", t.TX),
		slog.Float64("ty", t.TY),
	)
	if f.hub != nil {
		_ = f.hub.Publish(ctx, streaming.StreamEvent{
			Source:    logging.Source(ctx),
			EventType: schema.EventPaperFitted,
			Payload:   t,
		})
	}
	return t, nil
}

func (f *Fitter) fit(width, height int) (Transform, error) {
	if width > f.maxDim || height > f.maxDim {
		return Transform{}, schema.NewErrorf(schema.ErrCodeInvalidViewport,
			"container %dx%d exceeds the %d pixel limit", width, height, f.maxDim).
			WithDetails(map[string]any{"width": width, "height": height, "max_dimension": f.maxDim})
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prevW, prevH := f.paper.Dimensions()
	if err := f.paper.SetDimensions(width, height); err != nil {
		return Transform{}, err
	}
	if _, err := f.paper.ScaleContentToFit(FitOptions{
		Padding:     f.padding,
		ContentArea: f.bbox,
	}); err != nil {
		_ = f.paper.SetDimensions(prevW, prevH)
		return Transform{}, err
	}

	_, sy := f.paper.Scale()
	area := f.paper.GetArea()
	ty := (area.Height/2 - f.bbox.Y - f.bbox.Height/2) * sy
	f.paper.SetTranslate(0, ty)

	sx, _ := f.paper.Scale()
	return Transform{
		Width:  width,
		Height: height,
		Scale:  sx,
		TX:     0,
		TY:     ty,
	}, nil
}
