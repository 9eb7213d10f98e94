package diagram

import (
	"github.com/google/uuid"
	"github.com/rendis/flowpaper/pkg/schema"
)

// CellKind classifies a cell by the shape it is drawn with.
type CellKind string

const (
	KindStart    CellKind = "start"
	KindStep     CellKind = "step"
	KindDecision CellKind = "decision"
	KindFlow     CellKind = "flow"
)

// Cell is anything that can be inserted into a Graph: an Element or a Link.
type Cell interface {
	CellID() string
	CellKind() CellKind
	ZIndex() int
}

// Element is a node shape: a start terminal, a process step or a decision.
type Element struct {
	ID       string
	Kind     CellKind
	Position schema.Point
	Size     schema.Size
	Label    string
	Fill     string
	Z        int

	// Radius rounds the body corners (rx = ry). Zero draws square corners.
	Radius float64
	// BodyPath is an SVG path in the element's local box; calc() terms refer
	// to the box width (w) and height (h). Empty means a rectangular body.
	BodyPath string
	// TextWrap, when set, wraps the label inside the body shrunk by the given
	// (negative) width and height deltas.
	TextWrap *TextWrap
}

// TextWrap describes the wrapping box of a label relative to its element.
type TextWrap struct {
	Width  float64
	Height float64
}

func (e *Element) CellID() string     { return e.ID }
func (e *Element) CellKind() CellKind { return e.Kind }
func (e *Element) ZIndex() int        { return e.Z }

// BBox returns the element's bounding box in local coordinates.
func (e *Element) BBox() schema.Rect {
	return schema.NewRect(e.Position, e.Size)
}

// Link is a directed flow between two elements.
type Link struct {
	ID       string
	Source   string
	Target   string
	Label    string
	Vertices []schema.Point
	Stroke   string
	Z        int
}

func (l *Link) CellID() string     { return l.ID }
func (l *Link) CellKind() CellKind { return KindFlow }
func (l *Link) ZIndex() int        { return l.Z }

// WithLabel sets the link's text label and returns the link for chaining.
func (l *Link) WithLabel(text string) *Link {
	l.Label = text
	return l
}

// WithVertices sets the routing waypoints and returns the link for chaining.
func (l *Link) WithVertices(points ...schema.Point) *Link {
	l.Vertices = append([]schema.Point(nil), points...)
	return l
}

// Graph is the ordered collection of cells drawn on one paper.
// Insertion order only affects draw order among cells with equal z.
type Graph struct {
	Title string

	cells []Cell
	index map[string]Cell
}

// NewGraph creates an empty graph.
func NewGraph(title string) *Graph {
	return &Graph{
		Title: title,
		index: make(map[string]Cell),
	}
}

// AddCells inserts a batch of cells. Cells without an ID get a fresh UUID.
// Every link must reference elements already in the graph or earlier in the
// same batch; on any violation nothing is inserted.
func (g *Graph) AddCells(cells ...Cell) error {
	pending := make(map[string]Cell, len(cells))
	lookup := func(id string) (Cell, bool) {
		if c, ok := g.index[id]; ok {
			return c, true
		}
		c, ok := pending[id]
		return c, ok
	}

	for i, c := range cells {
		if c == nil {
			return schema.NewErrorf(schema.ErrCodeValidation, "cell at index %d is nil", i)
		}
		assignID(c)
		id := c.CellID()
		if _, exists := lookup(id); exists {
			return schema.NewError(schema.ErrCodeDuplicateCell, "duplicate cell id").WithCell(id)
		}

		if l, ok := c.(*Link); ok {
			for _, end := range []struct{ role, id string }{{"source", l.Source}, {"target", l.Target}} {
				ref, found := lookup(end.id)
				if !found {
					return schema.NewErrorf(schema.ErrCodeDanglingReference,
						"link %s references missing element %q", end.role, end.id).WithCell(id)
				}
				if _, isElement := ref.(*Element); !isElement {
					return schema.NewErrorf(schema.ErrCodeDanglingReference,
						"link %s %q is not an element", end.role, end.id).WithCell(id)
				}
			}
		}
		pending[id] = c
	}

	for _, c := range cells {
		g.cells = append(g.cells, c)
		g.index[c.CellID()] = c
	}
	return nil
}

func assignID(c Cell) {
	switch v := c.(type) {
	case *Element:
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
	case *Link:
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
	}
}

// Cells returns all cells in insertion order.
func (g *Graph) Cells() []Cell {
	out := make([]Cell, len(g.cells))
	copy(out, g.cells)
	return out
}

// Cell looks up a cell by ID.
func (g *Graph) Cell(id string) (Cell, bool) {
	c, ok := g.index[id]
	return c, ok
}

// Elements returns the elements in insertion order.
func (g *Graph) Elements() []*Element {
	var out []*Element
	for _, c := range g.cells {
		if e, ok := c.(*Element); ok {
			out = append(out, e)
		}
	}
	return out
}

// Links returns the links in insertion order.
func (g *Graph) Links() []*Link {
	var out []*Link
	for _, c := range g.cells {
		if l, ok := c.(*Link); ok {
			out = append(out, l)
		}
	}
	return out
}

// Element looks up an element by ID.
func (g *Graph) Element(id string) (*Element, bool) {
	e, ok := g.index[id].(*Element)
	return e, ok
}

// DrawOrder returns the cells sorted by z, keeping insertion order for ties.
func (g *Graph) DrawOrder() []Cell {
	out := g.Cells()
	// Insertion sort keeps the order stable; graphs here are small.
	for i := 1; i < len(out); i++ {
		c := out[i]
		j := i - 1
		for j >= 0 && out[j].ZIndex() > c.ZIndex() {
			out[j+1] = out[j]
			j--
		}
		out[j+1] = c
	}
	return out
}

// LinkBBox returns the bounding box of a link's model points: the source
// element centre, the vertices and the target element centre.
func (g *Graph) LinkBBox(l *Link) schema.Rect {
	points := make([]schema.Point, 0, len(l.Vertices)+2)
	if src, ok := g.Element(l.Source); ok {
		points = append(points, src.BBox().Center())
	}
	points = append(points, l.Vertices...)
	if tgt, ok := g.Element(l.Target); ok {
		points = append(points, tgt.BBox().Center())
	}
	return schema.BoundingRect(points...)
}

// BBox returns the union of all element and link bounding boxes.
// An empty graph yields the zero Rect.
func (g *Graph) BBox() schema.Rect {
	var (
		box   schema.Rect
		first = true
	)
	for _, c := range g.cells {
		var r schema.Rect
		switch v := c.(type) {
		case *Element:
			r = v.BBox()
		case *Link:
			r = g.LinkBBox(v)
		}
		if first {
			box, first = r, false
			continue
		}
		box = box.Union(r)
	}
	return box
}
