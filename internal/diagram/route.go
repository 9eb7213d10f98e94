package diagram

import (
	"context"
	"math"

	"github.com/rendis/flowpaper/pkg/schema"
)

const epsilon = 1e-9

// Route is the drawn geometry of a link in local graph coordinates.
type Route struct {
	// Points is the orthogonal polyline from the source outline to the
	// target outline.
	Points []schema.Point
	// Label is the anchor of the link label: the middle of the polyline.
	Label schema.Point
	// Arrow is the arrowhead triangle: tip, then the two base corners.
	Arrow [3]schema.Point
}

// Route computes the orthogonal route of l. The route runs from the source
// centre through the vertices to the target centre, gains one elbow per
// diagonal leg and is clipped at both shape outlines.
func (g *Graph) Route(ctx context.Context, l *Link) (*Route, error) {
	src, ok := g.Element(l.Source)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeDanglingReference, "unknown source %q", l.Source).WithCell(l.ID)
	}
	tgt, ok := g.Element(l.Target)
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeDanglingReference, "unknown target %q", l.Target).WithCell(l.ID)
	}

	points := make([]schema.Point, 0, len(l.Vertices)+2)
	points = append(points, src.BBox().Center())
	points = append(points, l.Vertices...)
	points = append(points, tgt.BBox().Center())

	obstacles := []schema.Rect{
		src.BBox().Inflate(RouterPadding),
		tgt.BBox().Inflate(RouterPadding),
	}
	points = simplify(orthogonalize(points, obstacles))
	if len(points) < 2 {
		// Overlapping centres leave nothing to draw.
		c := src.BBox().Center()
		return &Route{Points: []schema.Point{c, c}, Label: c, Arrow: [3]schema.Point{c, c, c}}, nil
	}

	srcOutline, err := Outline(ctx, src)
	if err != nil {
		return nil, err
	}
	tgtOutline, err := Outline(ctx, tgt)
	if err != nil {
		return nil, err
	}
	last := len(points) - 1
	points[0] = clipAtOutline(points[0], points[1], srcOutline)
	points[last] = clipAtOutline(points[last], points[last-1], tgtOutline)

	return &Route{
		Points: points,
		Label:  pointAtHalfLength(points),
		Arrow:  arrowHead(points[last-1], points[last]),
	}, nil
}

// orthogonalize inserts one elbow into every leg that is not axis-aligned.
// The elbow turns along the dominant axis first unless that corner falls
// inside an obstacle and the other corner does not.
func orthogonalize(points []schema.Point, obstacles []schema.Rect) []schema.Point {
	out := []schema.Point{points[0]}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		if math.Abs(a.X-b.X) > epsilon && math.Abs(a.Y-b.Y) > epsilon {
			horizontalFirst := schema.Point{X: b.X, Y: a.Y}
			verticalFirst := schema.Point{X: a.X, Y: b.Y}
			elbow, alt := horizontalFirst, verticalFirst
			if math.Abs(b.Y-a.Y) > math.Abs(b.X-a.X) {
				elbow, alt = verticalFirst, horizontalFirst
			}
			if blocked(elbow, obstacles) && !blocked(alt, obstacles) {
				elbow = alt
			}
			out = append(out, elbow)
		}
		out = append(out, b)
	}
	return out
}

func blocked(p schema.Point, obstacles []schema.Rect) bool {
	for _, r := range obstacles {
		if r.Contains(p) {
			return true
		}
	}
	return false
}

// simplify drops repeated points and middle points of straight runs.
func simplify(points []schema.Point) []schema.Point {
	out := make([]schema.Point, 0, len(points))
	for _, p := range points {
		if n := len(out); n > 0 && samePoint(out[n-1], p) {
			continue
		}
		if n := len(out); n >= 2 && collinear(out[n-2], out[n-1], p) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func samePoint(a, b schema.Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

func collinear(a, b, c schema.Point) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(cross) > epsilon {
		return false
	}
	// b must lie between a and c, otherwise the run doubles back.
	dot := (b.X-a.X)*(c.X-b.X) + (b.Y-a.Y)*(c.Y-b.Y)
	return dot >= 0
}

// clipAtOutline moves from (a point inside the shape) towards to and
// returns the point where the segment leaves the outline. When the segment
// never crosses the outline, from is returned unchanged.
func clipAtOutline(from, to schema.Point, outline []schema.Point) schema.Point {
	best := -1.0
	for i := range outline {
		p, q := outline[i], outline[(i+1)%len(outline)]
		if t, ok := segmentIntersection(from, to, p, q); ok && t > best {
			best = t
		}
	}
	if best < 0 {
		return from
	}
	return schema.Point{
		X: roundCoord(from.X + (to.X-from.X)*best),
		Y: roundCoord(from.Y + (to.Y-from.Y)*best),
	}
}

// roundCoord snaps intersection noise to a micro-unit grid.
func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// segmentIntersection returns the parameter t along a->b where it meets p->q.
func segmentIntersection(a, b, p, q schema.Point) (float64, bool) {
	rx, ry := b.X-a.X, b.Y-a.Y
	sx, sy := q.X-p.X, q.Y-p.Y
	denom := rx*sy - ry*sx
	if math.Abs(denom) < epsilon {
		return 0, false
	}
	t := ((p.X-a.X)*sy - (p.Y-a.Y)*sx) / denom
	u := ((p.X-a.X)*ry - (p.Y-a.Y)*rx) / denom
	if t < -epsilon || t > 1+epsilon || u < -epsilon || u > 1+epsilon {
		return 0, false
	}
	return t, true
}

func pointAtHalfLength(points []schema.Point) schema.Point {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += distance(points[i-1], points[i])
	}
	remaining := total / 2
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		d := distance(a, b)
		if d >= remaining && d > 0 {
			f := remaining / d
			return schema.Point{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f}
		}
		remaining -= d
	}
	return points[len(points)-1]
}

func arrowHead(from, tip schema.Point) [3]schema.Point {
	d := distance(from, tip)
	if d == 0 {
		return [3]schema.Point{tip, tip, tip}
	}
	ux, uy := (tip.X-from.X)/d, (tip.Y-from.Y)/d
	bx, by := tip.X-ux*arrowLength, tip.Y-uy*arrowLength
	return [3]schema.Point{
		tip,
		{X: bx - uy*arrowHalfHeight, Y: by + ux*arrowHalfHeight},
		{X: bx + uy*arrowHalfHeight, Y: by - ux*arrowHalfHeight},
	}
}

func distance(a, b schema.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
