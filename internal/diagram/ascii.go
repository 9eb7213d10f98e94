package diagram

import (
	"fmt"
	"math"
	"strings"
)

// Character cell size in graph units: one column per 6 units across, one row
// per 12 units down.
const (
	asciiColUnits = 6.0
	asciiRowUnits = 12.0
)

// RenderASCII renders the graph as text: element boxes placed on a character
// grid at their diagram positions, followed by the list of transitions.
func RenderASCII(g *Graph) string {
	var b strings.Builder

	if g.Title != "" {
		b.WriteString(fmt.Sprintf("=== %s ===\n\n", g.Title))
	}

	canvas := newASCIICanvas()
	origin := g.BBox().Origin()
	for _, e := range g.Elements() {
		box := makeBox(e)
		col := int(math.Round((e.Position.X - origin.X) / asciiColUnits))
		row := int(math.Round((e.Position.Y - origin.Y) / asciiRowUnits))
		if col < 0 {
			col = 0
		}
		if row < 0 {
			row = 0
		}
		canvas.place(box, row, col)
	}
	b.WriteString(canvas.String())

	links := g.Links()
	if len(links) > 0 {
		b.WriteString("\nTransitions:\n")
	}
	for _, l := range links {
		src, _ := g.Element(l.Source)
		tgt, _ := g.Element(l.Target)
		arrow := "──→"
		if l.Label != "" {
			arrow = fmt.Sprintf("─[%s]─→", l.Label)
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", firstLine(src.Label), arrow, firstLine(tgt.Label)))
	}

	return b.String()
}

// asciiBox holds the rendered lines of a single box.
type asciiBox struct {
	lines []string
	width int
}

// makeBox frames an element label. Starts get rounded corners, decisions
// angle brackets for sides.
func makeBox(e *Element) asciiBox {
	label := firstLine(e.Label)
	n := len([]rune(label))
	width := n + 4 // 2 border + 2 padding

	tl, tr, bl, br := "┌", "┐", "└", "┘"
	left, right := "│", "│"
	switch e.Kind {
	case KindStart:
		tl, tr, bl, br = "╭", "╮", "╰", "╯"
	case KindDecision:
		left, right = "<", ">"
	}

	lines := []string{
		tl + strings.Repeat("─", width-2) + tr,
		left + " " + label + " " + right,
		bl + strings.Repeat("─", width-2) + br,
	}
	return asciiBox{lines: lines, width: width}
}

// firstLine returns only the first line of a multi-line label.
func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// asciiCanvas is a growable grid of runes.
type asciiCanvas struct {
	rows [][]rune
}

func newASCIICanvas() *asciiCanvas {
	return &asciiCanvas{}
}

// place draws box with its top-left corner at (row, col), moving it right
// until it no longer overlaps a box already drawn.
func (c *asciiCanvas) place(box asciiBox, row, col int) {
	for !c.free(row, col, len(box.lines), box.width+1) {
		col++
	}
	for i, line := range box.lines {
		c.write(row+i, col, []rune(line))
	}
}

func (c *asciiCanvas) free(row, col, height, width int) bool {
	for r := row; r < row+height && r < len(c.rows); r++ {
		for x := col; x < col+width && x < len(c.rows[r]); x++ {
			if c.rows[r][x] != ' ' {
				return false
			}
		}
	}
	return true
}

func (c *asciiCanvas) write(row, col int, runes []rune) {
	for len(c.rows) <= row {
		c.rows = append(c.rows, nil)
	}
	line := c.rows[row]
	for len(line) < col+len(runes) {
		line = append(line, ' ')
	}
	copy(line[col:], runes)
	c.rows[row] = line
}

func (c *asciiCanvas) String() string {
	var b strings.Builder
	for _, line := range c.rows {
		b.WriteString(strings.TrimRight(string(line), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
