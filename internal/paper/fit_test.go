package paper

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowpaper/internal/diagram"
	"github.com/rendis/flowpaper/internal/logging"
	"github.com/rendis/flowpaper/internal/streaming"
	"github.com/rendis/flowpaper/pkg/schema"
)

func newFulfillmentFitter(t *testing.T, opts ...Option) *Fitter {
	t.Helper()
	g := diagram.MustOrderFulfillment().Graph
	p, err := New(1000, 800)
	require.NoError(t, err)
	f, err := NewFitter(p, g.BBox(), opts...)
	require.NoError(t, err)
	return f
}

func expectedScale(w, h int) float64 {
	return math.Min((float64(w)-80)/790, (float64(h)-80)/470)
}

func TestFit_Values(t *testing.T) {
	f := newFulfillmentFitter(t)

	tr, err := f.Fit(context.Background(), 1000, 800)
	require.NoError(t, err)

	s := expectedScale(1000, 800)
	assert.InDelta(t, s, tr.Scale, 1e-12)
	assert.Equal(t, 0.0, tr.TX)
	assert.InDelta(t, 400-285*s, tr.TY, 1e-9)
	assert.Equal(t, 1000, tr.Width)
	assert.Equal(t, 800, tr.Height)
	assert.Equal(t, tr.Matrix(), f.Paper().Matrix())
}

func TestFit_Idempotent(t *testing.T) {
	f := newFulfillmentFitter(t)
	ctx := context.Background()

	first, err := f.Fit(ctx, 1000, 800)
	require.NoError(t, err)
	second, err := f.Fit(ctx, 1000, 800)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFit_Resize(t *testing.T) {
	f := newFulfillmentFitter(t)
	ctx := context.Background()
	bbox := f.BBox()

	for _, size := range [][2]int{{1000, 800}, {500, 400}, {1920, 300}, {300, 1200}} {
		tr, err := f.Fit(ctx, size[0], size[1])
		require.NoError(t, err)
		s := expectedScale(size[0], size[1])
		assert.InDelta(t, s, tr.Scale, 1e-12, "size %v", size)

		// The scaled bbox plus padding fits the container.
		assert.LessOrEqual(t, bbox.Width*tr.Scale+80, float64(size[0])+1e-9)
		assert.LessOrEqual(t, bbox.Height*tr.Scale+80, float64(size[1])+1e-9)

		// The bbox centre maps to the vertical centre of the container.
		centre := tr.Matrix().Apply(bbox.Center())
		assert.InDelta(t, float64(size[1])/2, centre.Y, 1e-9, "size %v", size)
	}
}

func TestFit_ShrinkHalves(t *testing.T) {
	f := newFulfillmentFitter(t)
	ctx := context.Background()

	big, err := f.Fit(ctx, 1000, 800)
	require.NoError(t, err)
	small, err := f.Fit(ctx, 500, 400)
	require.NoError(t, err)

	assert.InDelta(t, 920.0/790, big.Scale, 1e-12)
	assert.InDelta(t, 420.0/790, small.Scale, 1e-12)
	assert.Less(t, small.Scale, big.Scale)
	assert.InDelta(t, 200-285*small.Scale, small.TY, 1e-9)
}

func TestFit_InvalidViewport(t *testing.T) {
	f := newFulfillmentFitter(t)
	ctx := context.Background()

	before, err := f.Fit(ctx, 1000, 800)
	require.NoError(t, err)

	for _, size := range [][2]int{{0, 800}, {1000, -5}, {80, 800}, {1000, 60}} {
		_, err := f.Fit(ctx, size[0], size[1])
		require.Error(t, err, "size %v", size)
		assert.True(t, schema.HasCode(err, schema.ErrCodeInvalidViewport))

		w, h := f.Paper().Dimensions()
		assert.Equal(t, [2]int{1000, 800}, [2]int{w, h})
		assert.Equal(t, before.Matrix(), f.Paper().Matrix())
	}
}

func TestFit_MaxDimension(t *testing.T) {
	f := newFulfillmentFitter(t)
	ctx := context.Background()
	assert.Equal(t, DefaultMaxDimension, f.MaxDimension())

	before, err := f.Fit(ctx, 1000, 800)
	require.NoError(t, err)

	for _, size := range [][2]int{{2000000000, 2000000000}, {DefaultMaxDimension + 1, 800}, {1000, 60000}} {
		_, err := f.Fit(ctx, size[0], size[1])
		require.Error(t, err, "size %v", size)
		assert.True(t, schema.HasCode(err, schema.ErrCodeInvalidViewport))
		assert.Equal(t, before.Matrix(), f.Paper().Matrix())
	}

	tr, err := f.Fit(ctx, DefaultMaxDimension, DefaultMaxDimension)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxDimension, tr.Width)

	small := newFulfillmentFitter(t, WithMaxDimension(1200))
	_, err = small.Fit(ctx, 1201, 800)
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeInvalidViewport))
	_, err = small.Fit(ctx, 1200, 800)
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxDimension, newFulfillmentFitter(t, WithMaxDimension(0)).MaxDimension())
}

func TestNewFitter_DegenerateBBox(t *testing.T) {
	p, err := New(100, 100)
	require.NoError(t, err)
	_, err = NewFitter(p, schema.Rect{Width: 10})
	require.Error(t, err)
	assert.True(t, schema.HasCode(err, schema.ErrCodeInvalidViewport))
}

func TestFit_Padding(t *testing.T) {
	f := newFulfillmentFitter(t, WithPadding(0))
	tr, err := f.Fit(context.Background(), 790, 470)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, tr.Scale, 1e-12)
}

func TestFit_PublishesAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, "debug")
	hub := streaming.NewMemoryHub()
	ctx := logging.WithSource(context.Background(), "panel")

	ch, cancel, err := hub.Subscribe(ctx, streaming.EventFilter{EventTypes: []string{schema.EventPaperFitted}})
	require.NoError(t, err)
	defer cancel()

	f := newFulfillmentFitter(t, WithLogger(logger), WithHub(hub))
	tr, err := f.Fit(ctx, 640, 480)
	require.NoError(t, err)

	select {
	case evt := <-ch:
		assert.Equal(t, "panel", evt.Source)
		assert.Equal(t, tr, evt.Payload)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fit event")
	}

	output := buf.String()
	assert.Contains(t, output, "paper fitted")
	assert.Contains(t, output, "viewport=640x480")
	assert.Contains(t, output, "source=panel")
}

func TestFit_Concurrent(t *testing.T) {
	f := newFulfillmentFitter(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, h := 400+i*50, 300+i*40
			tr, err := f.Fit(ctx, w, h)
			assert.NoError(t, err)
			assert.InDelta(t, expectedScale(w, h), tr.Scale, 1e-12)
		}(i)
	}
	wg.Wait()

	// The paper holds the transform of whichever fit ran last, intact.
	w, h := f.Paper().Dimensions()
	m := f.Paper().Matrix()
	assert.InDelta(t, expectedScale(w, h), m.SX, 1e-12)
	assert.Equal(t, 0.0, m.TX)
}
