package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/rendis/flowpaper/pkg/schema"
)

const documentSchemaURL = "https://flowpaper.dev/schemas/graph.json"

// documentSchemaJSON is the JSON Schema for the exported graph document.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowpaper.dev/schemas/graph.json",
  "type": "object",
  "required": ["bbox", "cells"],
  "properties": {
    "title": { "type": "string" },
    "bbox": { "$ref": "#/$defs/rect" },
    "cells": {
      "type": "array",
      "items": {
        "oneOf": [
          { "$ref": "#/$defs/element" },
          { "$ref": "#/$defs/link" }
        ]
      }
    }
  },
  "additionalProperties": false,
  "$defs": {
    "color": {
      "type": "string",
      "pattern": "^#[0-9a-fA-F]{6}$"
    },
    "point": {
      "type": "object",
      "required": ["x", "y"],
      "properties": {
        "x": { "type": "number" },
        "y": { "type": "number" }
      },
      "additionalProperties": false
    },
    "size": {
      "type": "object",
      "required": ["width", "height"],
      "properties": {
        "width": { "type": "number", "exclusiveMinimum": 0 },
        "height": { "type": "number", "exclusiveMinimum": 0 }
      },
      "additionalProperties": false
    },
    "rect": {
      "type": "object",
      "required": ["x", "y", "width", "height"],
      "properties": {
        "x": { "type": "number" },
        "y": { "type": "number" },
        "width": { "type": "number", "minimum": 0 },
        "height": { "type": "number", "minimum": 0 }
      },
      "additionalProperties": false
    },
    "ref": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": { "type": "string", "minLength": 1 }
      },
      "additionalProperties": false
    },
    "element": {
      "type": "object",
      "required": ["id", "type", "kind", "z", "position", "size", "fill"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": { "enum": ["standard.Rectangle", "standard.Path"] },
        "kind": { "enum": ["start", "step", "decision"] },
        "z": { "type": "integer" },
        "label": { "type": "string" },
        "position": { "$ref": "#/$defs/point" },
        "size": { "$ref": "#/$defs/size" },
        "fill": { "$ref": "#/$defs/color" },
        "radius": { "type": "number", "minimum": 0 },
        "path": { "type": "string", "pattern": "^M " }
      },
      "additionalProperties": false
    },
    "link": {
      "type": "object",
      "required": ["id", "type", "kind", "z", "source", "target", "stroke"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "type": { "const": "standard.Link" },
        "kind": { "const": "flow" },
        "z": { "type": "integer" },
        "label": { "type": "string" },
        "source": { "$ref": "#/$defs/ref" },
        "target": { "$ref": "#/$defs/ref" },
        "vertices": {
          "type": "array",
          "items": { "$ref": "#/$defs/point" }
        },
        "stroke": { "$ref": "#/$defs/color" }
      },
      "additionalProperties": false
    }
  }
}`

// JSONSchemaValidator validates graph documents against the document schema
// (JSON Schema Draft 2020-12). It is safe for concurrent use.
type JSONSchemaValidator struct {
	documentSchema *jsonschema.Schema
}

// NewJSONSchemaValidator creates a JSONSchemaValidator with the document
// schema pre-compiled.
func NewJSONSchemaValidator() (*JSONSchemaValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	schemaDoc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal document schema: %w", err)
	}
	if err := c.AddResource(documentSchemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add document schema resource: %w", err)
	}

	compiled, err := c.Compile(documentSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile document schema: %w", err)
	}
	return &JSONSchemaValidator{documentSchema: compiled}, nil
}

// ValidateDocument validates any JSON-encodable value, typically a
// *diagram.GraphDocument, against the document schema.
func (v *JSONSchemaValidator) ValidateDocument(doc any) error {
	if doc == nil {
		return schema.NewError(schema.ErrCodeValidation, "graph document is nil")
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "failed to serialize graph document").WithCause(err)
	}
	return v.ValidateJSON(b)
}

// ValidateJSON validates raw JSON bytes against the document schema.
func (v *JSONSchemaValidator) ValidateJSON(data []byte) error {
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return schema.NewError(schema.ErrCodeValidation, "graph document is not valid JSON").WithCause(err)
	}
	if err := v.documentSchema.Validate(inst); err != nil {
		return toFlowError(err)
	}
	return nil
}

// toFlowError converts a jsonschema.ValidationError into a FlowError
// listing every violation with its instance location.
func toFlowError(err error) *schema.FlowError {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return schema.NewError(schema.ErrCodeValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeValidation, verr.Error())
	}

	if len(violations) == 1 {
		return schema.NewError(schema.ErrCodeValidation, violations[0]).
			WithDetails(map[string]any{"violations": violations})
	}

	msg := fmt.Sprintf("validation failed with %d errors", len(violations))
	return schema.NewError(schema.ErrCodeValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
