package diagram

import (
	"encoding/json"
	"fmt"

	"github.com/rendis/flowpaper/pkg/schema"
)

// Cell type names in the graph document.
const (
	TypeRectangle = "standard.Rectangle"
	TypePath      = "standard.Path"
	TypeLink      = "standard.Link"
)

// GraphDocument is the JSON form of a graph.
type GraphDocument struct {
	Title string         `json:"title,omitempty"`
	BBox  schema.Rect    `json:"bbox"`
	Cells []DocumentCell `json:"cells"`
}

// DocumentCell is one element or link of a GraphDocument. Element-only and
// link-only fields are omitted from the other kind.
type DocumentCell struct {
	ID    string   `json:"id"`
	Type  string   `json:"type"`
	Kind  CellKind `json:"kind"`
	Z     int      `json:"z"`
	Label string   `json:"label,omitempty"`

	Position *schema.Point `json:"position,omitempty"`
	Size     *schema.Size  `json:"size,omitempty"`
	Fill     string        `json:"fill,omitempty"`
	Radius   float64       `json:"radius,omitempty"`
	Path     string        `json:"path,omitempty"`

	Source   *CellRef       `json:"source,omitempty"`
	Target   *CellRef       `json:"target,omitempty"`
	Vertices []schema.Point `json:"vertices,omitempty"`
	Stroke   string         `json:"stroke,omitempty"`
}

// CellRef points at another cell by ID.
type CellRef struct {
	ID string `json:"id"`
}

// Document exports g in insertion order.
func Document(g *Graph) *GraphDocument {
	doc := &GraphDocument{
		Title: g.Title,
		BBox:  g.BBox(),
		Cells: make([]DocumentCell, 0, len(g.cells)),
	}
	for _, c := range g.cells {
		switch v := c.(type) {
		case *Element:
			pos, size := v.Position, v.Size
			cell := DocumentCell{
				ID:       v.ID,
				Type:     TypeRectangle,
				Kind:     v.Kind,
				Z:        v.Z,
				Label:    v.Label,
				Position: &pos,
				Size:     &size,
				Fill:     v.Fill,
				Radius:   v.Radius,
				Path:     v.BodyPath,
			}
			if v.BodyPath != "" {
				cell.Type = TypePath
			}
			doc.Cells = append(doc.Cells, cell)
		case *Link:
			doc.Cells = append(doc.Cells, DocumentCell{
				ID:       v.ID,
				Type:     TypeLink,
				Kind:     KindFlow,
				Z:        v.Z,
				Label:    v.Label,
				Source:   &CellRef{ID: v.Source},
				Target:   &CellRef{ID: v.Target},
				Vertices: v.Vertices,
				Stroke:   v.Stroke,
			})
		}
	}
	return doc
}

// JSON encodes the document with indentation.
func (d *GraphDocument) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("diagram: encode document: %w", err)
	}
	return data, nil
}

// Map returns the document as generic JSON values, the form jq filters and
// schema validators consume.
func (d *GraphDocument) Map() (map[string]any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("diagram: encode document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("diagram: decode document: %w", err)
	}
	return out, nil
}
