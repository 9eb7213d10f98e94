package schema

import (
	"fmt"
	"math"
	"strings"
)

// Point is a position in local (model) coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect builds a Rect from a position and a size.
func NewRect(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Corner returns the bottom-right corner.
func (r Rect) Corner() Point { return Point{X: r.X + r.Width, Y: r.Y + r.Height} }

// Center returns the centre point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether p lies strictly inside r.
func (r Rect) Contains(p Point) bool {
	return p.X > r.X && p.X < r.X+r.Width && p.Y > r.Y && p.Y < r.Y+r.Height
}

// Inflate grows the rectangle by d on every side. Negative d shrinks it.
func (r Rect) Inflate(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.X+r.Width, o.X+o.Width)
	y1 := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// BoundingRect returns the smallest rectangle containing all points.
// The result is the zero Rect when points is empty.
func BoundingRect(points ...Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	x0, y0 := points[0].X, points[0].Y
	x1, y1 := x0, y0
	for _, p := range points[1:] {
		x0 = math.Min(x0, p.X)
		y0 = math.Min(y0, p.Y)
		x1 = math.Max(x1, p.X)
		y1 = math.Max(y1, p.Y)
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

func (r Rect) String() string {
	return fmt.Sprintf("rect(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Matrix is a scale+translate transform from local to paper coordinates.
// Rotation and skew are never produced by the paper.
type Matrix struct {
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Matrix{SX: 1, SY: 1}

// Apply maps a local point to paper coordinates.
func (m Matrix) Apply(p Point) Point {
	return Point{X: p.X*m.SX + m.TX, Y: p.Y*m.SY + m.TY}
}

// ApplyRect maps a local rectangle to paper coordinates.
func (m Matrix) ApplyRect(r Rect) Rect {
	o := m.Apply(r.Origin())
	return Rect{X: o.X, Y: o.Y, Width: r.Width * m.SX, Height: r.Height * m.SY}
}

// SVG formats the matrix as an SVG transform attribute value.
func (m Matrix) SVG() string {
	return fmt.Sprintf("matrix(%s,0,0,%s,%s,%s)", FormatFloat(m.SX), FormatFloat(m.SY), FormatFloat(m.TX), FormatFloat(m.TY))
}

// FormatFloat renders f with at most four decimals and no trailing zeros.
func FormatFloat(f float64) string {
	s := fmt.Sprintf("%.4f", f)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}
