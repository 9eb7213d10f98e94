package diagram

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/rendis/flowpaper/pkg/schema"
)

// RenderSVG draws the graph as an SVG document of the view's size. The
// paper transform is applied once on the root group, so every cell keeps
// its local coordinates.
func RenderSVG(ctx context.Context, g *Graph, view View) ([]byte, error) {
	if err := view.validate(); err != nil {
		return nil, err
	}
	drawings, err := Scene(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("diagram: layout svg: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		view.Width, view.Height, view.Width, view.Height)
	if g.Title != "" {
		fmt.Fprintf(&sb, "  <title>%s</title>\n", escape(g.Title))
	}
	fmt.Fprintf(&sb, `  <rect class="background" width="100%%" height="100%%" fill="%s"/>`+"\n", BackgroundColor)
	fmt.Fprintf(&sb, `  <g class="viewport" transform="%s">`+"\n", view.Matrix.SVG())

	for _, d := range drawings {
		fmt.Fprintf(&sb, `    <g class="cell" data-id="%s" data-kind="%s">`+"\n", escape(d.CellID), d.Kind)
		if d.Body != nil {
			writeBody(&sb, d.Body, "body")
		}
		if len(d.Line) > 0 {
			fmt.Fprintf(&sb, `      <path class="line" d="%s" fill="none" stroke="%s" stroke-width="%s"/>`+"\n",
				polylinePath(d.Line, false), d.Stroke, schema.FormatFloat(LineWidth))
			fmt.Fprintf(&sb, `      <path class="marker" d="%s" fill="%s" stroke="%s"/>`+"\n",
				polylinePath(d.Arrow, true), d.Stroke, d.Stroke)
		}
		if d.LabelBody != nil {
			writeBody(&sb, d.LabelBody, "label-body")
		}
		if len(d.Text) > 0 {
			writeText(&sb, d.Text)
		}
		sb.WriteString("    </g>\n")
	}

	sb.WriteString("  </g>\n</svg>\n")
	return []byte(sb.String()), nil
}

func writeBody(sb *strings.Builder, b *Body, class string) {
	if len(b.Polygon) > 0 {
		fmt.Fprintf(sb, `      <path class="%s" d="%s" fill="%s" stroke="none"/>`+"\n",
			class, polylinePath(b.Polygon, true), b.Fill)
		return
	}
	r := b.Rect
	fmt.Fprintf(sb, `      <rect class="%s" x="%s" y="%s" width="%s" height="%s"`,
		class, schema.FormatFloat(r.X), schema.FormatFloat(r.Y),
		schema.FormatFloat(r.Width), schema.FormatFloat(r.Height))
	if b.Radius > 0 {
		rad := schema.FormatFloat(b.Radius)
		fmt.Fprintf(sb, ` rx="%s" ry="%s"`, rad, rad)
	}
	fmt.Fprintf(sb, ` fill="%s" stroke="none"/>`+"\n", b.Fill)
}

func writeText(sb *strings.Builder, lines []TextLine) {
	fmt.Fprintf(sb, `      <text class="label" font-family="%s" font-size="%s" fill="%s" text-anchor="middle">`,
		FontFamily, schema.FormatFloat(FontSize), FontFill)
	for _, line := range lines {
		fmt.Fprintf(sb, `<tspan x="%s" y="%s">%s</tspan>`,
			schema.FormatFloat(line.X), schema.FormatFloat(line.Y), escape(line.Text))
	}
	sb.WriteString("</text>\n")
}

func polylinePath(points []schema.Point, closed bool) string {
	var sb strings.Builder
	for i, p := range points {
		if i == 0 {
			sb.WriteString("M ")
		} else {
			sb.WriteString(" L ")
		}
		sb.WriteString(schema.FormatFloat(p.X))
		sb.WriteByte(' ')
		sb.WriteString(schema.FormatFloat(p.Y))
	}
	if closed {
		sb.WriteString(" Z")
	}
	return sb.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
