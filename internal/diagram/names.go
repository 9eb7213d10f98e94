package diagram

import (
	"strconv"
	"strings"
	"unicode"
)

// Names assigns each element a readable, unique identifier derived from its
// label ("Add to Cart" becomes "add_to_cart"). Renderers whose formats cannot
// carry UUIDs comfortably use these instead.
func Names(g *Graph) map[string]string {
	names := make(map[string]string, len(g.index))
	used := make(map[string]int)
	for _, e := range g.Elements() {
		base := slug(e.Label)
		if base == "" {
			base = string(e.Kind)
		}
		name := base
		if n := used[base]; n > 0 {
			name = base + "_" + strconv.Itoa(n+1)
		}
		used[base]++
		names[e.ID] = name
	}
	return names
}

// slug lowercases s and joins its alphanumeric runs with underscores.
func slug(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	return b.String()
}
