package diagram

import (
	"context"
	"math"

	"github.com/rendis/flowpaper/pkg/schema"
)

// MaxViewDimension is the largest width or height a paper rendering will
// allocate.
const MaxViewDimension = 20000

// View is the target surface of a paper rendering: the container size in
// pixels and the paper transform mapping local coordinates onto it.
type View struct {
	Width  int
	Height int
	Matrix schema.Matrix
}

// IdentityView draws the graph unscaled on a surface just large enough to
// hold its bbox plus margin on each side.
func IdentityView(g *Graph, margin float64) View {
	box := g.BBox()
	return View{
		Width:  int(math.Ceil(box.X + box.Width + margin)),
		Height: int(math.Ceil(box.Y + box.Height + margin)),
		Matrix: schema.Identity,
	}
}

func (v View) validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return schema.NewErrorf(schema.ErrCodeInvalidViewport, "viewport %dx%d has no area", v.Width, v.Height)
	}
	if v.Width > MaxViewDimension || v.Height > MaxViewDimension {
		return schema.NewErrorf(schema.ErrCodeInvalidViewport, "viewport %dx%d exceeds %d pixels",
			v.Width, v.Height, MaxViewDimension)
	}
	if v.Matrix.SX <= 0 || v.Matrix.SY <= 0 {
		return schema.NewErrorf(schema.ErrCodeInvalidViewport, "paper scale %sx%s is not positive",
			schema.FormatFloat(v.Matrix.SX), schema.FormatFloat(v.Matrix.SY))
	}
	return nil
}

// Body is a filled shape: a rectangle with optional corner radius, or a
// polygon when Polygon is set.
type Body struct {
	Rect    schema.Rect
	Radius  float64
	Polygon []schema.Point
	Fill    string
}

// TextLine is one line of centred text; X is the horizontal centre and Y
// the baseline.
type TextLine struct {
	Text string
	X, Y float64
}

// Drawing is everything needed to paint one cell, in local coordinates.
type Drawing struct {
	CellID string
	Kind   CellKind

	Body *Body

	Line   []schema.Point
	Stroke string
	Arrow  []schema.Point

	LabelBody *Body
	Text      []TextLine
}

// Scene lays out every cell of g in draw order.
func Scene(ctx context.Context, g *Graph) ([]Drawing, error) {
	m, err := labelMetrics()
	if err != nil {
		return nil, err
	}

	var drawings []Drawing
	for _, c := range g.DrawOrder() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			d   Drawing
			err error
		)
		switch v := c.(type) {
		case *Element:
			d, err = elementDrawing(ctx, m, v)
		case *Link:
			d, err = linkDrawing(ctx, m, g, v)
		}
		if err != nil {
			return nil, err
		}
		drawings = append(drawings, d)
	}
	return drawings, nil
}

func elementDrawing(ctx context.Context, m *textMetrics, e *Element) (Drawing, error) {
	box := e.BBox()
	body := &Body{Rect: box, Radius: e.Radius, Fill: e.Fill}
	if e.BodyPath != "" {
		outline, err := Outline(ctx, e)
		if err != nil {
			return Drawing{}, err
		}
		body.Polygon = outline
	}

	lines, err := elementLines(e)
	if err != nil {
		return Drawing{}, err
	}
	return Drawing{
		CellID: e.ID,
		Kind:   e.Kind,
		Body:   body,
		Text:   centredLines(m, lines, box.Center()),
	}, nil
}

func linkDrawing(ctx context.Context, m *textMetrics, g *Graph, l *Link) (Drawing, error) {
	route, err := g.Route(ctx, l)
	if err != nil {
		return Drawing{}, err
	}
	d := Drawing{
		CellID: l.ID,
		Kind:   KindFlow,
		Line:   route.Points,
		Stroke: l.Stroke,
		Arrow:  route.Arrow[:],
	}
	if l.Label == "" {
		return d, nil
	}

	text := schema.Rect{
		Width:  m.width(l.Label),
		Height: m.lineHeight,
	}
	text.X = route.Label.X - text.Width/2
	text.Y = route.Label.Y - text.Height/2

	var attrs [4]float64
	for i, expr := range []string{labelBodyX, labelBodyY, labelBodyWidth, labelBodyHeight} {
		v, err := ResolveCalcFloat(ctx, expr, text)
		if err != nil {
			return Drawing{}, err
		}
		attrs[i] = v
	}
	d.LabelBody = &Body{
		Rect:   schema.Rect{X: attrs[0], Y: attrs[1], Width: attrs[2], Height: attrs[3]},
		Radius: labelRadius,
		Fill:   l.Stroke,
	}
	d.Text = centredLines(m, []string{l.Label}, route.Label)
	return d, nil
}

// centredLines stacks lines so the text block is centred on c.
func centredLines(m *textMetrics, lines []string, c schema.Point) []TextLine {
	block := float64(len(lines)) * m.lineHeight
	top := c.Y - block/2
	out := make([]TextLine, 0, len(lines))
	for i, line := range lines {
		out = append(out, TextLine{
			Text: line,
			X:    c.X,
			Y:    top + float64(i)*m.lineHeight + m.ascent,
		})
	}
	return out
}
