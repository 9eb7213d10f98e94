package validation

import (
	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/pkg/schema"
)

// GraphValidator orchestrates the two-stage validation pipeline:
// 1. Structural (JSON Schema over the exported document)
// 2. Graph (references, start terminal, reachability, decision branches)
type GraphValidator struct {
	jsonSchema *JSONSchemaValidator
}

// NewGraphValidator creates a GraphValidator.
func NewGraphValidator() (*GraphValidator, error) {
	jsv, err := NewJSONSchemaValidator()
	if err != nil {
		return nil, err
	}
	return &GraphValidator{jsonSchema: jsv}, nil
}

// Validate runs the full pipeline and returns an aggregated result.
// Structural errors short-circuit the graph stage.
func (gv *GraphValidator) Validate(g *diagram.Graph) *schema.ValidationResult {
	result := &schema.ValidationResult{}
	if g == nil {
		result.AddError("/", schema.ErrCodeValidation, "graph is nil")
		return result
	}

	if err := gv.jsonSchema.ValidateDocument(diagram.Document(g)); err != nil {
		addStructural(result, err)
		return result
	}

	result.Merge(checkGraph(g))
	return result
}

// ValidateDocument delegates to the underlying JSONSchemaValidator.
func (gv *GraphValidator) ValidateDocument(doc any) error {
	return gv.jsonSchema.ValidateDocument(doc)
}

// addStructural converts a schema validation error into result issues, one
// per violation.
func addStructural(result *schema.ValidationResult, err error) {
	fe, ok := err.(*schema.FlowError)
	if !ok {
		result.AddError("/", schema.ErrCodeValidation, err.Error())
		return
	}
	if violations, ok := fe.Details["violations"].([]string); ok {
		for _, v := range violations {
			result.AddError("/", schema.ErrCodeValidation, v)
		}
		return
	}
	result.AddError("/", schema.ErrCodeValidation, fe.Message)
}
