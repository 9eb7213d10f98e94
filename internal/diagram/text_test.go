package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureText(t *testing.T) {
	short, err := MeasureText("Ok")
	require.NoError(t, err)
	long, err := MeasureText("Not Ok")
	require.NoError(t, err)

	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)

	empty, err := MeasureText("")
	require.NoError(t, err)
	assert.Zero(t, empty)
}

func TestLineHeight(t *testing.T) {
	h, err := LineHeight()
	require.NoError(t, err)
	assert.Greater(t, h, 10.0)
	assert.Less(t, h, 30.0)
}

func TestWrapText_FitsWidth(t *testing.T) {
	lines, err := WrapText("Send Order to Warehouse", 90)
	require.NoError(t, err)
	require.Greater(t, len(lines), 1)

	for _, line := range lines {
		w, err := MeasureText(line)
		require.NoError(t, err)
		assert.LessOrEqual(t, w, 90.0, line)
	}
	assert.Equal(t, "Send Order to Warehouse", joinWords(lines))
}

func TestWrapText_SplitsLongWord(t *testing.T) {
	lines, err := WrapText("Supercalifragilistic", 40)
	require.NoError(t, err)
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "Supercalifragilistic", joinRunes(lines))
}

func TestWrapText_NoWrap(t *testing.T) {
	lines, err := WrapText("  Pack   Order ", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Pack Order"}, lines)

	lines, err = WrapText("   ", 50)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestElementLines(t *testing.T) {
	lines, err := elementLines(NewStart(0, 0, "Start"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Start"}, lines)

	lines, err = elementLines(NewStep(0, 0, "Present Error Message"))
	require.NoError(t, err)
	assert.Greater(t, len(lines), 1)
}

func TestWrapTextBox_DropsOverflowingLines(t *testing.T) {
	lh, err := LineHeight()
	require.NoError(t, err)

	all, err := WrapText("Send Order to Warehouse", 90)
	require.NoError(t, err)
	require.Greater(t, float64(len(all))*lh, 50.0, "unbounded block overflows the body")

	lines, err := WrapTextBox("Send Order to Warehouse", 90, 50)
	require.NoError(t, err)
	require.NotEmpty(t, lines)
	assert.LessOrEqual(t, float64(len(lines))*lh, 50.0)
	assert.Equal(t, all[:len(lines)], lines)

	long, err := WrapTextBox("Supercalifragilisticexpialidocious", 40, 50)
	require.NoError(t, err)
	assert.LessOrEqual(t, float64(len(long))*lh, 50.0)

	unbounded, err := WrapTextBox("Send Order to Warehouse", 90, 0)
	require.NoError(t, err)
	assert.Equal(t, all, unbounded)

	none, err := WrapTextBox("Send Order to Warehouse", 90, lh/2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestElementLines_StaysInsideStepBody(t *testing.T) {
	lh, err := LineHeight()
	require.NoError(t, err)

	step := NewStep(200, 250, "Send Order to Warehouse")
	lines, err := elementLines(step)
	require.NoError(t, err)
	require.NotEmpty(t, lines)

	assert.LessOrEqual(t, float64(len(lines))*lh, step.Size.Height+step.TextWrap.Height)
	for _, line := range lines {
		w, err := MeasureText(line)
		require.NoError(t, err)
		assert.LessOrEqual(t, w, step.Size.Width+step.TextWrap.Width, line)
	}
}

func joinWords(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += " "
		}
		out += l
	}
	return out
}

func joinRunes(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l
	}
	return out
}
