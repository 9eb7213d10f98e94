package diagram

import (
	"context"
	"strconv"
	"strings"

	"github.com/rendis/flowpaper/internal/expressions"
	"github.com/rendis/flowpaper/pkg/schema"
)

var calcEngine = expressions.NewExprEngine()

// ResolveCalc replaces every calc(...) term in attr with its numeric value.
// The reference box is exposed to the expressions as x, y, w and h.
func ResolveCalc(ctx context.Context, attr string, box schema.Rect) (string, error) {
	env := map[string]any{
		"x": box.X,
		"y": box.Y,
		"w": box.Width,
		"h": box.Height,
	}

	var b strings.Builder
	rest := attr
	for {
		start := strings.Index(rest, "calc(")
		if start < 0 {
			b.WriteString(rest)
			return b.String(), nil
		}
		b.WriteString(rest[:start])

		open := start + len("calc(")
		end := matchParen(rest, open)
		if end < 0 {
			return "", schema.NewErrorf(schema.ErrCodeExpression, "unbalanced calc() in %q", attr)
		}
		v, err := calcEngine.EvaluateFloat(ctx, rest[open:end], env)
		if err != nil {
			return "", err
		}
		b.WriteString(schema.FormatFloat(v))
		rest = rest[end+1:]
	}
}

// ResolveCalcFloat evaluates a single attribute that is either a number or a calc() term.
func ResolveCalcFloat(ctx context.Context, attr string, box schema.Rect) (float64, error) {
	s, err := ResolveCalc(ctx, attr, box)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, schema.NewErrorf(schema.ErrCodeExpression, "attribute %q is not numeric", attr).WithCause(err)
	}
	return v, nil
}

// matchParen returns the index of the parenthesis closing the one opened just
// before from, or -1.
func matchParen(s string, from int) int {
	depth := 1
	for i := from; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// pathPolygon parses a resolved polygonal path ("M x y x y ... Z", with
// optional L commands) into its vertices.
func pathPolygon(d string) ([]schema.Point, error) {
	var nums []float64
	for _, tok := range strings.Fields(strings.NewReplacer(",", " ").Replace(d)) {
		switch strings.ToUpper(tok) {
		case "M", "L", "Z":
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, schema.NewErrorf(schema.ErrCodeRender, "unsupported path token %q", tok).WithCause(err)
		}
		nums = append(nums, v)
	}
	if len(nums)%2 != 0 || len(nums) < 6 {
		return nil, schema.NewErrorf(schema.ErrCodeRender, "path %q is not a polygon", d)
	}
	points := make([]schema.Point, 0, len(nums)/2)
	for i := 0; i < len(nums); i += 2 {
		points = append(points, schema.Point{X: nums[i], Y: nums[i+1]})
	}
	return points, nil
}

// Outline returns the element's body outline in local graph coordinates,
// clockwise from the first vertex. Rectangular bodies (rounded or not) yield
// their four corners.
func Outline(ctx context.Context, e *Element) ([]schema.Point, error) {
	box := e.BBox()
	if e.BodyPath == "" {
		return []schema.Point{
			{X: box.X, Y: box.Y},
			{X: box.X + box.Width, Y: box.Y},
			{X: box.X + box.Width, Y: box.Y + box.Height},
			{X: box.X, Y: box.Y + box.Height},
		}, nil
	}
	d, err := ResolveCalc(ctx, e.BodyPath, schema.Rect{Width: box.Width, Height: box.Height})
	if err != nil {
		return nil, err
	}
	local, err := pathPolygon(d)
	if err != nil {
		return nil, err
	}
	for i := range local {
		local[i].X += box.X
		local[i].Y += box.Y
	}
	return local, nil
}
