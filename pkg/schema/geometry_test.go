package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectUnion(t *testing.T) {
	a := Rect{X: 60, Y: 55, Width: 80, Height: 50}
	b := Rect{X: 750, Y: 250, Width: 100, Height: 60}

	u := a.Union(b)
	assert.Equal(t, Rect{X: 60, Y: 55, Width: 790, Height: 255}, u)
}

func TestRectCenterAndInflate(t *testing.T) {
	r := Rect{X: 470, Y: 240, Width: 160, Height: 80}
	assert.Equal(t, Point{X: 550, Y: 280}, r.Center())
	assert.Equal(t, Rect{X: 465, Y: 235, Width: 170, Height: 90}, r.Inflate(5))
	assert.True(t, r.Contains(r.Center()))
	assert.False(t, r.Contains(r.Origin()), "boundary is not inside")
}

func TestBoundingRect(t *testing.T) {
	assert.Equal(t, Rect{}, BoundingRect())
	r := BoundingRect(Point{X: 100, Y: 480}, Point{X: 250, Y: 280}, Point{X: 100, Y: 280})
	assert.Equal(t, Rect{X: 100, Y: 280, Width: 150, Height: 200}, r)
}

func TestMatrixApply(t *testing.T) {
	m := Matrix{SX: 0.5, SY: 0.5, TX: 10, TY: -20}
	assert.Equal(t, Point{X: 40, Y: 5}, m.Apply(Point{X: 60, Y: 50}))
	assert.Equal(t, Rect{X: 40, Y: 5, Width: 395, Height: 235}, m.ApplyRect(Rect{X: 60, Y: 50, Width: 790, Height: 470}))
	assert.Equal(t, Point{X: 3, Y: 4}, Identity.Apply(Point{X: 3, Y: 4}))
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		1:         "1",
		0.5:       "0.5",
		1.1645569: "1.1646",
		-0.00001:  "0",
		120:       "120",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatFloat(in), "FormatFloat(%v)", in)
	}
	assert.Equal(t, "matrix(0.5,0,0,0.5,0,12.25)", Matrix{SX: 0.5, SY: 0.5, TY: 12.25}.SVG())
}
