package diagram

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/rendis/flowpaper/pkg/schema"
)

// RenderPNG rasterises the same scene as RenderSVG. gg transforms do not
// scale glyphs or stroke widths, so coordinates, widths and the font size
// are all mapped through the view matrix here.
func RenderPNG(ctx context.Context, g *Graph, view View) ([]byte, error) {
	if err := view.validate(); err != nil {
		return nil, err
	}
	drawings, err := Scene(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("diagram: layout png: %w", err)
	}

	fnt, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeRender, "parse label font").WithCause(err)
	}
	scale := view.Matrix.SX
	if view.Matrix.SY < scale {
		scale = view.Matrix.SY
	}
	face := truetype.NewFace(fnt, &truetype.Options{Size: FontSize * scale})
	defer face.Close()

	dc := gg.NewContext(view.Width, view.Height)
	dc.SetHexColor(BackgroundColor)
	dc.Clear()
	dc.SetFontFace(face)

	m := view.Matrix
	for _, d := range drawings {
		if d.Body != nil {
			fillBody(dc, m, d.Body)
		}
		if len(d.Line) > 0 {
			tracePath(dc, m, d.Line, false)
			dc.SetHexColor(d.Stroke)
			dc.SetLineWidth(LineWidth * scale)
			dc.Stroke()

			tracePath(dc, m, d.Arrow, true)
			dc.SetHexColor(d.Stroke)
			dc.Fill()
		}
		if d.LabelBody != nil {
			fillBody(dc, m, d.LabelBody)
		}
		dc.SetHexColor(FontFill)
		for _, line := range d.Text {
			p := m.Apply(schema.Point{X: line.X, Y: line.Y})
			dc.DrawStringAnchored(line.Text, p.X, p.Y, 0.5, 0)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, schema.NewError(schema.ErrCodeRender, "encode png").WithCause(err)
	}
	return buf.Bytes(), nil
}

func fillBody(dc *gg.Context, m schema.Matrix, b *Body) {
	if len(b.Polygon) > 0 {
		tracePath(dc, m, b.Polygon, true)
	} else {
		r := m.ApplyRect(b.Rect)
		if b.Radius > 0 {
			dc.DrawRoundedRectangle(r.X, r.Y, r.Width, r.Height, b.Radius*m.SX)
		} else {
			dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		}
	}
	dc.SetHexColor(b.Fill)
	dc.Fill()
}

func tracePath(dc *gg.Context, m schema.Matrix, points []schema.Point, closed bool) {
	dc.NewSubPath()
	for i, p := range points {
		q := m.Apply(p)
		if i == 0 {
			dc.MoveTo(q.X, q.Y)
			continue
		}
		dc.LineTo(q.X, q.Y)
	}
	if closed {
		dc.ClosePath()
	}
}
