package diagram

import (
	"github.com/google/uuid"
	"github.com/rendis/flowpaper/pkg/schema"
)

// Fill colours per shape kind.
const (
	StartColor      = "#ff9580"
	FlowColor       = "#48cba4"
	StepColor       = "#4a7bcb"
	DecisionColor   = "#80aaff"
	BackgroundColor = "#F3F7F6"
)

// Label font shared by every shape.
const (
	FontFamily = "sans-serif"
	FontSize   = 15.0
	FontFill   = "#fff"
)

// Default link geometry.
const (
	RouterPadding   = 5.0
	LineWidth       = 2.0
	labelPadding    = 8.0
	labelRadius     = 5.0
	arrowLength     = 10.0
	arrowHalfHeight = 5.0
)

// diamondPath is the decision body: a rhombus touching the middle of each side of its box.
const diamondPath = "M 0 calc(0.5 * h) calc(0.5 * w) 0 calc(w) calc(0.5 * h) calc(0.5 * w) calc(h) Z"

// Label body geometry relative to the label text bbox.
const (
	labelBodyX      = "calc(x - 8)"
	labelBodyY      = "calc(y - 8)"
	labelBodyWidth  = "calc(w + 16)"
	labelBodyHeight = "calc(h + 16)"
)

// NewStart creates a rounded start terminal. The shape is nudged by (10, 5)
// so that its 80x50 body sits centred in the same slot as a 100x60 step.
func NewStart(x, y float64, text string) *Element {
	return &Element{
		ID:       uuid.NewString(),
		Kind:     KindStart,
		Position: schema.Point{X: x + 10, Y: y + 5},
		Size:     schema.Size{Width: 80, Height: 50},
		Label:    text,
		Fill:     StartColor,
		Z:        1,
		Radius:   25,
	}
}

// NewStep creates a rectangular process step whose label wraps inside the body.
func NewStep(x, y float64, text string) *Element {
	return &Element{
		ID:       uuid.NewString(),
		Kind:     KindStep,
		Position: schema.Point{X: x, Y: y},
		Size:     schema.Size{Width: 100, Height: 60},
		Label:    text,
		Fill:     StepColor,
		Z:        1,
		TextWrap: &TextWrap{Width: -10, Height: -10},
	}
}

// NewDecision creates a diamond decision. (x, y) is the slot a step would use;
// the wider 160x80 box is shifted so both share the same centre line.
func NewDecision(x, y float64, text string) *Element {
	return &Element{
		ID:       uuid.NewString(),
		Kind:     KindDecision,
		Position: schema.Point{X: x - 30, Y: y - 10},
		Size:     schema.Size{Width: 160, Height: 80},
		Label:    text,
		Fill:     DecisionColor,
		Z:        1,
		BodyPath: diamondPath,
	}
}

// NewFlow creates a directed link from source to target.
func NewFlow(source, target *Element) *Link {
	return &Link{
		ID:     uuid.NewString(),
		Source: source.ID,
		Target: target.ID,
		Stroke: FlowColor,
		Z:      2,
	}
}
