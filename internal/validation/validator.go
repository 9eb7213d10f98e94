package validation

import (
	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/pkg/schema"
)

// Validator checks a graph and its exported document before they are served.
type Validator interface {
	Validate(g *diagram.Graph) *schema.ValidationResult
	ValidateDocument(doc any) error
}
