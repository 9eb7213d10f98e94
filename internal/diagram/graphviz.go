package diagram

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/rendis/flowpaper/pkg/schema"
)

// pointsPerInch converts graph units to Graphviz inches.
const pointsPerInch = 72.0

// GraphvizFormat selects the Graphviz output format.
type GraphvizFormat string

const (
	GraphvizPNG GraphvizFormat = "png"
	GraphvizSVG GraphvizFormat = "svg"
)

// RenderGraphviz renders the graph with Graphviz. Nodes are pinned at their
// graph positions and laid out with neato, so the picture keeps the diagram's
// geometry while Graphviz draws the edges.
func RenderGraphviz(ctx context.Context, g *Graph, format GraphvizFormat) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case GraphvizPNG:
		gvFormat = graphviz.PNG
	case GraphvizSVG:
		gvFormat = graphviz.SVG
	default:
		return nil, schema.NewErrorf(schema.ErrCodeRender, "unsupported graphviz format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("diagram: create graphviz: %w", err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.NEATO)

	graph, err := graphviz.ParseBytes([]byte(RenderDOT(g)))
	if err != nil {
		return nil, fmt.Errorf("diagram: parse dot: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("diagram: render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// RenderDOT writes the graph in DOT with pinned node positions. Graphviz
// measures y upwards, so y is negated.
func RenderDOT(g *Graph) string {
	names := Names(g)

	var b strings.Builder
	b.WriteString("digraph flowpaper {\n")
	fmt.Fprintf(&b, "  graph [bgcolor=%q, splines=ortho, fontname=%q", BackgroundColor, FontFamily)
	if g.Title != "" {
		fmt.Fprintf(&b, ", label=%q, labelloc=t", g.Title)
	}
	b.WriteString("];\n")
	fmt.Fprintf(&b, "  node [style=filled, color=none, fontcolor=%q, fontname=%q, fontsize=%s, fixedsize=true];\n",
		FontFill, FontFamily, schema.FormatFloat(FontSize))
	fmt.Fprintf(&b, "  edge [penwidth=%s, fontname=%q, fontsize=%s];\n",
		schema.FormatFloat(LineWidth), FontFamily, schema.FormatFloat(FontSize))

	for _, e := range g.Elements() {
		c := e.BBox().Center()
		fmt.Fprintf(&b, "  %s [label=%q, shape=%s, fillcolor=%q, width=%s, height=%s, pos=\"%s,%s!\"",
			names[e.ID], e.Label, dotShape(e.Kind), e.Fill,
			inches(e.Size.Width), inches(e.Size.Height), inches(c.X), inches(-c.Y))
		if e.Kind == KindStart {
			b.WriteString(`, style="filled,rounded"`)
		}
		b.WriteString("];\n")
	}
	for _, l := range g.Links() {
		fmt.Fprintf(&b, "  %s -> %s [color=%q", names[l.Source], names[l.Target], l.Stroke)
		if l.Label != "" {
			fmt.Fprintf(&b, ", xlabel=%q, fontcolor=%q", l.Label, l.Stroke)
		}
		b.WriteString("];\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func dotShape(kind CellKind) string {
	switch kind {
	case KindDecision:
		return "diamond"
	default:
		return "box"
	}
}

func inches(v float64) string {
	return schema.FormatFloat(v / pointsPerInch)
}
