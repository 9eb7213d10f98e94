package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMermaid(t *testing.T) {
	out := RenderMermaid(MustOrderFulfillment().Graph)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "%% Order Fulfillment")

	// Shapes by kind: stadium start, boxed steps, diamond decisions.
	assert.Contains(t, out, `start(["Start"])`)
	assert.Contains(t, out, `add_to_cart["Add to Cart"]`)
	assert.Contains(t, out, `valid_payment{"Valid Payment?"}`)

	assert.Contains(t, out, "start --> add_to_cart")
	assert.Contains(t, out, "valid_payment -->|No| present_error_message")
	assert.Contains(t, out, "quality_check -->|Not Ok| send_order_to_warehouse")
	assert.Equal(t, 12, strings.Count(out, "-->"))

	assert.Contains(t, out, "classDef start fill:#ff9580")
	assert.Contains(t, out, "classDef decision fill:#80aaff")
	assert.Contains(t, out, "class valid_payment,quality_check decision")
	assert.Contains(t, out, "linkStyle default stroke:#48cba4,stroke-width:2px")
}

func TestMermaidEscapeLabel(t *testing.T) {
	assert.Equal(t, "say #quot;hi#quot;", mermaidEscapeLabel(`say "hi"`))
	assert.Equal(t, "a<br/>b", mermaidEscapeLabel("a\nb"))
	assert.Equal(t, "Valid Payment?", mermaidEscapeLabel("Valid Payment?"))
}
