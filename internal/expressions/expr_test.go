package expressions

import (
	"context"
	"sync"
	"testing"

	"github.com/rendis/flowpaper/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExprEngine(t *testing.T) {
	e := NewExprEngine()
	assert.NotNil(t, e)
	assert.Equal(t, "expr", e.Name())
}

func TestExprEngine_ImplementsEngine(t *testing.T) {
	var _ Engine = (*ExprEngine)(nil)
}

func TestExpr_IntegerLiteral(t *testing.T) {
	e := NewExprEngine()

	out, err := e.Evaluate(context.Background(), "42", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestExpr_CalcArithmetic(t *testing.T) {
	e := NewExprEngine()
	box := map[string]any{"x": 10.0, "y": 20.0, "w": 160.0, "h": 80.0}

	tests := []struct {
		expr string
		want float64
	}{
		{"0.5 * h", 40},
		{"0.5 * w", 80},
		{"w", 160},
		{"x - 8", 2},
		{"y - 8", 12},
		{"w + 16", 176},
		{"h + 16", 96},
	}
	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := e.EvaluateFloat(context.Background(), tc.expr, box)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestExpr_EvaluateFloatFromInt(t *testing.T) {
	e := NewExprEngine()
	got, err := e.EvaluateFloat(context.Background(), "3 + 4", nil)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestExpr_EvaluateFloatRejectsNonNumber(t *testing.T) {
	e := NewExprEngine()
	_, err := e.EvaluateFloat(context.Background(), `"wide"`, nil)
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeExpression))
}

func TestExpr_EmptyExpression(t *testing.T) {
	e := NewExprEngine()
	_, err := e.Evaluate(context.Background(), "", nil)
	require.Error(t, err)

	var flowErr *schema.FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Equal(t, schema.ErrCodeExpression, flowErr.Code)
}

func TestExpr_CompileError(t *testing.T) {
	e := NewExprEngine()
	_, err := e.Evaluate(context.Background(), "0.5 * * h", map[string]any{"h": 1.0})
	require.Error(t, err)

	var flowErr *schema.FlowError
	require.ErrorAs(t, err, &flowErr)
	assert.Contains(t, flowErr.Message, "compile error")
	assert.Equal(t, "0.5 * * h", flowErr.Details["expression"])
}

func TestExpr_CancelledContext(t *testing.T) {
	e := NewExprEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Evaluate(ctx, "1 + 1", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpr_CacheReuse(t *testing.T) {
	e := NewExprEngine()
	box := map[string]any{"w": 100.0}

	_, err := e.Evaluate(context.Background(), "w / 2", box)
	require.NoError(t, err)
	_, err = e.Evaluate(context.Background(), "w / 2", map[string]any{"w": 80.0})
	require.NoError(t, err)

	e.mu.RLock()
	assert.Len(t, e.cache, 1)
	e.mu.RUnlock()
}

func TestExpr_ConcurrentEvaluation(t *testing.T) {
	e := NewExprEngine()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := float64(i)
			got, err := e.EvaluateFloat(context.Background(), "0.5 * w", map[string]any{"w": w})
			assert.NoError(t, err)
			assert.InDelta(t, w/2, got, 1e-9)
		}(i)
	}
	wg.Wait()
}
