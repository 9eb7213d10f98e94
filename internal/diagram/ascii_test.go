package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderASCII(t *testing.T) {
	out := RenderASCII(MustOrderFulfillment().Graph)
	assert.NotEmpty(t, out)

	assert.Contains(t, out, "=== Order Fulfillment ===")

	// Rounded start, square steps, angled decisions.
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "┌")
	assert.Contains(t, out, "< Valid Payment? >")
	assert.Contains(t, out, "│ Add to Cart │")

	assert.Contains(t, out, "Transitions:")
	assert.Contains(t, out, "Quality Check? ─[Not Ok]─→ Send Order to Warehouse")
	assert.Contains(t, out, "Start ──→ Add to Cart")
}

func TestRenderASCII_Layout(t *testing.T) {
	out := RenderASCII(MustOrderFulfillment().Graph)
	lines := strings.Split(out, "\n")

	// The first grid row holds the top lane left to right.
	var top string
	for _, l := range lines {
		if strings.Contains(l, "Add to Cart") {
			top = l
			break
		}
	}
	require.NotEmpty(t, top)
	assert.Less(t, strings.Index(top, "Start"), strings.Index(top, "Add to Cart"))
	assert.Less(t, strings.Index(top, "Add to Cart"), strings.Index(top, "Checkout Items"))
	assert.Less(t, strings.Index(top, "Checkout Items"), strings.Index(top, "Add Shipping Info"))
}

func TestASCIICanvas_AvoidsOverlap(t *testing.T) {
	c := newASCIICanvas()
	a := makeBox(NewStep(0, 0, "first"))
	b := makeBox(NewStep(0, 0, "second"))
	c.place(a, 0, 0)
	c.place(b, 0, 0)

	row := strings.Split(c.String(), "\n")[1]
	assert.Contains(t, row, "│ first │")
	assert.Contains(t, row, "│ second │")
}
