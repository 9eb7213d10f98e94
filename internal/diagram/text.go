package diagram

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// textMetrics measures label text with Go's bundled sans-serif face.
// font.Face values are not safe for concurrent use, hence the mutex.
type textMetrics struct {
	mu         sync.Mutex
	face       font.Face
	lineHeight float64
	ascent     float64
}

var (
	metricsOnce sync.Once
	metrics     *textMetrics
	metricsErr  error
)

func labelMetrics() (*textMetrics, error) {
	metricsOnce.Do(func() {
		fnt, err := opentype.Parse(goregular.TTF)
		if err != nil {
			metricsErr = fmt.Errorf("diagram: parse label font: %w", err)
			return
		}
		face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    FontSize,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			metricsErr = fmt.Errorf("diagram: create label face: %w", err)
			return
		}
		metrics = &textMetrics{
			face:       face,
			lineHeight: fixedToFloat(face.Metrics().Height),
			ascent:     fixedToFloat(face.Metrics().Ascent),
		}
	})
	return metrics, metricsErr
}

func (m *textMetrics) width(s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fixedToFloat(font.MeasureString(m.face, s))
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

// MeasureText returns the advance width of s in the label font.
func MeasureText(s string) (float64, error) {
	m, err := labelMetrics()
	if err != nil {
		return 0, err
	}
	return m.width(s), nil
}

// LineHeight returns the label font's line height.
func LineHeight() (float64, error) {
	m, err := labelMetrics()
	if err != nil {
		return 0, err
	}
	return m.lineHeight, nil
}

// WrapText breaks text into lines no wider than maxWidth. Words wider than
// maxWidth on their own are split between characters. maxWidth <= 0 disables
// wrapping.
func WrapText(text string, maxWidth float64) ([]string, error) {
	m, err := labelMetrics()
	if err != nil {
		return nil, err
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, nil
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}, nil
	}

	var (
		lines   []string
		current string
	)
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if m.width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if m.width(word) <= maxWidth {
			current = word
			continue
		}
		pieces := splitWord(m, word, maxWidth)
		lines = append(lines, pieces[:len(pieces)-1]...)
		current = pieces[len(pieces)-1]
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines, nil
}

// splitWord cuts a word into chunks that each fit maxWidth, keeping at least
// one rune per chunk.
func splitWord(m *textMetrics, word string, maxWidth float64) []string {
	var (
		pieces []string
		chunk  []rune
	)
	for _, r := range word {
		next := append(chunk, r)
		if len(chunk) > 0 && m.width(string(next)) > maxWidth {
			pieces = append(pieces, string(chunk))
			chunk = []rune{r}
			continue
		}
		chunk = next
	}
	return append(pieces, string(chunk))
}

// WrapTextBox wraps text to maxWidth and then drops the lines whose block
// would grow taller than maxHeight. maxHeight <= 0 keeps every line.
func WrapTextBox(text string, maxWidth, maxHeight float64) ([]string, error) {
	lines, err := WrapText(text, maxWidth)
	if err != nil || maxHeight <= 0 {
		return lines, err
	}
	m, err := labelMetrics()
	if err != nil {
		return nil, err
	}
	fit := int(maxHeight / m.lineHeight)
	if fit < len(lines) {
		lines = lines[:fit]
	}
	return lines, nil
}

// elementLines returns the label lines of an element, wrapped inside the
// body inset by TextWrap when the element carries one.
func elementLines(e *Element) ([]string, error) {
	if e.TextWrap == nil {
		return strings.Split(e.Label, "\n"), nil
	}
	return WrapTextBox(e.Label, e.Size.Width+e.TextWrap.Width, e.Size.Height+e.TextWrap.Height)
}
