package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/flowpaper/pkg/schema"
)

func TestOrderFulfillment_Shape(t *testing.T) {
	f, err := OrderFulfillment()
	require.NoError(t, err)
	g := f.Graph

	assert.Equal(t, FulfillmentTitle, g.Title)
	assert.Len(t, g.Elements(), 11)
	assert.Len(t, g.Links(), 12)
	assert.NoError(t, g.Verify())

	kinds := map[CellKind]int{}
	for _, e := range g.Elements() {
		kinds[e.Kind]++
	}
	assert.Equal(t, map[CellKind]int{KindStart: 1, KindStep: 8, KindDecision: 2}, kinds)
}

func TestOrderFulfillment_BBox(t *testing.T) {
	g := MustOrderFulfillment().Graph
	assert.Equal(t, schema.Rect{X: 60, Y: 50, Width: 790, Height: 470}, g.BBox())
}

func TestOrderFulfillment_Labels(t *testing.T) {
	f := MustOrderFulfillment()
	labels := map[string]string{}
	for _, l := range f.Graph.Links() {
		if l.Label != "" {
			labels[l.Source+">"+l.Target] = l.Label
		}
	}
	assert.Equal(t, map[string]string{
		f.ValidPayment.ID + ">" + f.PresentErrorMessage.ID:  "No",
		f.ValidPayment.ID + ">" + f.SendOrderToWarehouse.ID: "Yes",
		f.QualityCheck.ID + ">" + f.ShipItemsToCustomer.ID:  "Ok",
		f.QualityCheck.ID + ">" + f.SendOrderToWarehouse.ID: "Not Ok",
	}, labels)
}

func TestOrderFulfillment_Vertices(t *testing.T) {
	f := MustOrderFulfillment()
	links := f.Graph.Links()

	assert.Equal(t, []schema.Point{{X: 800, Y: 180}}, links[6].Vertices)
	assert.Equal(t, f.PresentErrorMessage.ID, links[6].Source)
	assert.Equal(t, []schema.Point{{X: 100, Y: 480}, {X: 100, Y: 280}}, links[11].Vertices)
	assert.Equal(t, f.QualityCheck.ID, links[11].Source)
}

func TestOrderFulfillment_FreshIDs(t *testing.T) {
	a := MustOrderFulfillment()
	b := MustOrderFulfillment()
	assert.NotEqual(t, a.Start.ID, b.Start.ID)
}

func TestOrderFulfillment_ReachableFromStart(t *testing.T) {
	f := MustOrderFulfillment()
	reach := f.Graph.Reachable(f.Start.ID)
	assert.Len(t, reach, 11)
}

func TestOrderFulfillment_Cycles(t *testing.T) {
	f := MustOrderFulfillment()
	cycles := f.Graph.Cycles()

	assert.Equal(t, [][]string{
		{f.AddPaymentInfo.ID, f.ValidPayment.ID, f.PresentErrorMessage.ID},
		{f.SendOrderToWarehouse.ID, f.PackOrder.ID, f.QualityCheck.ID},
	}, cycles)

	var throughQC int
	for _, c := range cycles {
		for _, id := range c {
			if id == f.QualityCheck.ID {
				throughQC++
			}
		}
	}
	assert.Equal(t, 1, throughQC, "quality check sits on exactly one cycle")
}

func TestNames(t *testing.T) {
	f := MustOrderFulfillment()
	names := Names(f.Graph)
	assert.Equal(t, "start", names[f.Start.ID])
	assert.Equal(t, "valid_payment", names[f.ValidPayment.ID])
	assert.Equal(t, "send_order_to_warehouse", names[f.SendOrderToWarehouse.ID])

	g := NewGraph("dupes")
	a, b := NewStep(0, 0, "Same"), NewStep(200, 0, "Same")
	require.NoError(t, g.AddCells(a, b))
	names = Names(g)
	assert.Equal(t, "same", names[a.ID])
	assert.Equal(t, "same_2", names[b.ID])
}
