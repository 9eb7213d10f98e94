package expressions

import (
	"context"
	"testing"

	"github.com/rendis/flowpaper/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() map[string]any {
	return map[string]any{
		"title": "Order Fulfillment",
		"cells": []any{
			map[string]any{"id": "a", "kind": "start", "label": "Start"},
			map[string]any{"id": "b", "kind": "decision", "label": "Valid Payment?"},
			map[string]any{"id": "c", "kind": "flow", "label": "No", "source": map[string]any{"id": "b"}},
		},
	}
}

func TestNewGoJQEngine(t *testing.T) {
	e := NewGoJQEngine()
	assert.NotNil(t, e)
	assert.Equal(t, "jq", e.Name())
}

func TestGoJQEngine_ImplementsEngine(t *testing.T) {
	var _ Engine = (*GoJQEngine)(nil)
}

func TestGoJQ_SelectField(t *testing.T) {
	e := NewGoJQEngine()
	out, err := e.Evaluate(context.Background(), ".title", sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "Order Fulfillment", out)
}

func TestGoJQ_SingleSelection(t *testing.T) {
	e := NewGoJQEngine()
	out, err := e.Evaluate(context.Background(), `.cells[] | select(.kind == "decision") | .label`, sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, "Valid Payment?", out)
}

func TestGoJQ_MultipleOutputs(t *testing.T) {
	e := NewGoJQEngine()
	out, err := e.Evaluate(context.Background(), ".cells[].id", sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "c"}, out)
}

func TestGoJQ_NoOutput(t *testing.T) {
	e := NewGoJQEngine()
	out, err := e.Evaluate(context.Background(), `.cells[] | select(.kind == "step")`, sampleDocument())
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestGoJQ_EvaluateAllAlwaysSlice(t *testing.T) {
	e := NewGoJQEngine()
	out, err := e.EvaluateAll(context.Background(), ".cells | length", sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, []any{3}, out)
}

func TestGoJQ_ParseError(t *testing.T) {
	e := NewGoJQEngine()
	_, err := e.Evaluate(context.Background(), ".cells[", sampleDocument())
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeExpression))
	assert.Contains(t, err.Error(), "parse error")
}

func TestGoJQ_RuntimeError(t *testing.T) {
	e := NewGoJQEngine()
	_, err := e.Evaluate(context.Background(), ".title | keys", sampleDocument())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluation failed")
}

func TestGoJQ_EnvironmentBlocked(t *testing.T) {
	e := NewGoJQEngine()
	out, err := e.Evaluate(context.Background(), "$ENV | length", sampleDocument())
	require.NoError(t, err)
	assert.Equal(t, 0, out)
}

func TestGoJQ_EmptyExpression(t *testing.T) {
	e := NewGoJQEngine()
	_, err := e.Evaluate(context.Background(), "", sampleDocument())
	require.Error(t, err)
}
