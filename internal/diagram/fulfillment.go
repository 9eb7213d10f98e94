package diagram

import (
	"fmt"

	"github.com/rendis/flowpaper/pkg/schema"
)

// FulfillmentTitle names the order-fulfillment diagram.
const FulfillmentTitle = "Order Fulfillment"

// Fulfillment is the assembled order-fulfillment flowchart with handles to
// each of its elements.
type Fulfillment struct {
	Graph *Graph

	Start                *Element
	AddToCart            *Element
	CheckoutItems        *Element
	AddShippingInfo      *Element
	AddPaymentInfo       *Element
	ValidPayment         *Element
	PresentErrorMessage  *Element
	SendOrderToWarehouse *Element
	PackOrder            *Element
	QualityCheck         *Element
	ShipItemsToCustomer  *Element
}

// OrderFulfillment assembles the e-commerce order-fulfillment process:
// eleven elements at fixed coordinates and twelve flows, inserted in one batch.
func OrderFulfillment() (*Fulfillment, error) {
	f := &Fulfillment{
		Start:                NewStart(50, 50, "Start"),
		AddToCart:            NewStep(200, 50, "Add to Cart"),
		CheckoutItems:        NewStep(350, 50, "Checkout Items"),
		AddShippingInfo:      NewStep(500, 50, "Add Shipping Info"),
		AddPaymentInfo:       NewStep(500, 150, "Add Payment Info"),
		ValidPayment:         NewDecision(500, 250, "Valid Payment?"),
		PresentErrorMessage:  NewStep(750, 250, "Present Error Message"),
		SendOrderToWarehouse: NewStep(200, 250, "Send Order to Warehouse"),
		PackOrder:            NewStep(200, 350, "Pack Order"),
		QualityCheck:         NewDecision(200, 450, "Quality Check?"),
		ShipItemsToCustomer:  NewStep(500, 450, "Ship Items to Customer"),
	}

	g := NewGraph(FulfillmentTitle)
	err := g.AddCells(
		f.Start,
		f.AddToCart,
		f.CheckoutItems,
		f.AddShippingInfo,
		f.AddPaymentInfo,
		f.ValidPayment,
		f.PresentErrorMessage,
		f.SendOrderToWarehouse,
		f.PackOrder,
		f.QualityCheck,
		f.ShipItemsToCustomer,
		NewFlow(f.Start, f.AddToCart),
		NewFlow(f.AddToCart, f.CheckoutItems),
		NewFlow(f.CheckoutItems, f.AddShippingInfo),
		NewFlow(f.AddShippingInfo, f.AddPaymentInfo),
		NewFlow(f.AddPaymentInfo, f.ValidPayment),
		NewFlow(f.ValidPayment, f.PresentErrorMessage).
			WithLabel("No"),
		NewFlow(f.PresentErrorMessage, f.AddPaymentInfo).
			WithVertices(schema.Point{X: 800, Y: 180}),
		NewFlow(f.ValidPayment, f.SendOrderToWarehouse).
			WithLabel("Yes"),
		NewFlow(f.SendOrderToWarehouse, f.PackOrder),
		NewFlow(f.PackOrder, f.QualityCheck),
		NewFlow(f.QualityCheck, f.ShipItemsToCustomer).
			WithLabel("Ok"),
		NewFlow(f.QualityCheck, f.SendOrderToWarehouse).
			WithLabel("Not Ok").
			WithVertices(schema.Point{X: 100, Y: 480}, schema.Point{X: 100, Y: 280}),
	)
	if err != nil {
		return nil, fmt.Errorf("diagram: assemble order fulfillment: %w", err)
	}

	f.Graph = g
	return f, nil
}

// MustOrderFulfillment is like OrderFulfillment but panics on error.
// The diagram is literal data, so a failure is a programming error.
func MustOrderFulfillment() *Fulfillment {
	f, err := OrderFulfillment()
	if err != nil {
		panic(err)
	}
	return f
}
