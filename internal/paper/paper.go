// Package paper models the viewport a graph is drawn on: a container size,
// a uniform scale and a translation, plus the fit-to-viewport routine.
package paper

import (
	"math"
	"sync"

	"github.com/rendis/flowpaper/pkg/schema"
)

// Paper is the mutable viewport. All methods are safe for concurrent use.
type Paper struct {
	mu            sync.Mutex
	width, height int
	sx, sy        float64
	tx, ty        float64
}

// New creates a paper of the given container size at scale 1 with no
// translation.
func New(width, height int) (*Paper, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	return &Paper{width: width, height: height, sx: 1, sy: 1}, nil
}

func checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return schema.NewErrorf(schema.ErrCodeInvalidViewport, "container %dx%d has no area", width, height).
			WithDetails(map[string]any{"width": width, "height": height})
	}
	return nil
}

// Dimensions returns the container size in pixels.
func (p *Paper) Dimensions() (width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// SetDimensions resizes the container. Scale and translation are kept.
func (p *Paper) SetDimensions(width, height int) error {
	if err := checkDimensions(width, height); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
	return nil
}

// Scale returns the current scale factors.
func (p *Paper) Scale() (sx, sy float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sx, p.sy
}

// SetScale sets the scale factors; both must be positive and finite.
func (p *Paper) SetScale(sx, sy float64) error {
	if !validScale(sx) || !validScale(sy) {
		return schema.NewErrorf(schema.ErrCodeInvalidViewport, "scale %sx%s is not positive",
			schema.FormatFloat(sx), schema.FormatFloat(sy))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sx, p.sy = sx, sy
	return nil
}

func validScale(s float64) bool {
	return s > 0 && !math.IsInf(s, 0) && !math.IsNaN(s)
}

// Translate returns the current translation in pixels.
func (p *Paper) Translate() (tx, ty float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tx, p.ty
}

// SetTranslate sets the translation in pixels.
func (p *Paper) SetTranslate(tx, ty float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tx, p.ty = tx, ty
}

// Matrix returns the local-to-paper transform.
func (p *Paper) Matrix() schema.Matrix {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.matrixLocked()
}

func (p *Paper) matrixLocked() schema.Matrix {
	return schema.Matrix{SX: p.sx, SY: p.sy, TX: p.tx, TY: p.ty}
}

// GetArea returns the visible part of the paper in local coordinates.
func (p *Paper) GetArea() schema.Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.areaLocked()
}

func (p *Paper) areaLocked() schema.Rect {
	return schema.Rect{
		X:      -p.tx / p.sx,
		Y:      -p.ty / p.sy,
		Width:  float64(p.width) / p.sx,
		Height: float64(p.height) / p.sy,
	}
}

// LocalToPaperRect maps a rectangle from local to paper coordinates.
func (p *Paper) LocalToPaperRect(r schema.Rect) schema.Rect {
	return p.Matrix().ApplyRect(r)
}

// FitOptions controls ScaleContentToFit.
type FitOptions struct {
	// Padding is kept free on every side of the container.
	Padding float64
	// ContentArea is the local rectangle to fit.
	ContentArea schema.Rect
}

// ScaleContentToFit scales the paper uniformly so ContentArea fits the
// container minus padding, and translates it so the content's top-left corner lands on
// the padded origin. On error the paper is left unchanged.
func (p *Paper) ScaleContentToFit(opts FitOptions) (schema.Matrix, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	content := opts.ContentArea
	if content.Empty() {
		return schema.Matrix{}, schema.NewErrorf(schema.ErrCodeInvalidViewport,
			"content area %s is degenerate", content)
	}
	fitW := float64(p.width) - 2*opts.Padding
	fitH := float64(p.height) - 2*opts.Padding
	if fitW <= 0 || fitH <= 0 {
		return schema.Matrix{}, schema.NewErrorf(schema.ErrCodeInvalidViewport,
			"container %dx%d leaves no room inside padding %s", p.width, p.height, schema.FormatFloat(opts.Padding)).
			WithDetails(map[string]any{"width": p.width, "height": p.height, "padding": opts.Padding})
	}

	s := math.Min(fitW/content.Width, fitH/content.Height)
	p.sx, p.sy = s, s
	p.tx = opts.Padding - content.X*s
	p.ty = opts.Padding - content.Y*s
	return p.matrixLocked(), nil
}
