package validation

import (
	"fmt"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/pkg/schema"
)

// checkGraph performs graph analysis the document schema cannot express:
// referential integrity, a single start terminal, reachability from it and
// decision branching.
func checkGraph(g *diagram.Graph) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	if err := g.Verify(); err != nil {
		var cell string
		if fe, ok := err.(*schema.FlowError); ok {
			cell = fe.CellID
		}
		result.AddError(fmt.Sprintf("cells[%s]", cell), schema.ErrCodeDanglingReference, err.Error())
		return result // broken references make the remaining analysis meaningless
	}

	var starts []*diagram.Element
	for _, e := range g.Elements() {
		if e.Kind == diagram.KindStart {
			starts = append(starts, e)
		}
	}
	if len(starts) != 1 {
		result.AddError("cells", schema.ErrCodeValidation,
			fmt.Sprintf("graph needs exactly one start element, found %d", len(starts)))
		return result
	}

	reachable := g.Reachable(starts[0].ID)
	for _, e := range g.Elements() {
		if !reachable[e.ID] {
			result.AddWarning(fmt.Sprintf("cells[%s]", e.ID), schema.ErrCodeValidation,
				fmt.Sprintf("element %q is unreachable from %q", e.Label, starts[0].Label))
		}
	}

	outgoing := make(map[string][]*diagram.Link)
	for _, l := range g.Links() {
		outgoing[l.Source] = append(outgoing[l.Source], l)
	}
	for _, e := range g.Elements() {
		if e.Kind != diagram.KindDecision {
			continue
		}
		branches := outgoing[e.ID]
		if len(branches) < 2 {
			result.AddWarning(fmt.Sprintf("cells[%s]", e.ID), schema.ErrCodeValidation,
				fmt.Sprintf("decision %q has %d outgoing flows, want at least 2", e.Label, len(branches)))
		}
		for _, l := range branches {
			if l.Label == "" {
				result.AddWarning(fmt.Sprintf("cells[%s]", l.ID), schema.ErrCodeValidation,
					fmt.Sprintf("flow leaving decision %q has no label", e.Label))
			}
		}
	}

	return result
}
