package main

import (
	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/format"
)

// OrdersView drives the order history page.
type OrdersView struct {
	Orders []OrderView
}

// OrderView is one order, for the history list and the detail page.
type OrderView struct {
	OrderNumber string
	State       string
	StateLabel  string
	Payable     bool

	Items       []CheckoutLineItem
	Subtotal    string
	DeliveryFee string
	Total       string
	AmountPaid  string
	BalanceDue  string
	PartlyPaid  bool

	DeliveryAddress string
	DeliveryCity    string
	DeliveryRegion  string
	Notes           string
	CreatedAt       string
}

func buildOrdersView(orders []api.Order) OrdersView {
	view := OrdersView{Orders: make([]OrderView, 0, len(orders))}
	for i := range orders {
		view.Orders = append(view.Orders, buildOrderView(&orders[i]))
	}
	return view
}

func buildOrderView(o *api.Order) OrderView {
	label := o.StateDisplay
	if label == "" {
		label = o.State
	}
	view := OrderView{
		OrderNumber: o.OrderNumber,
		State:       o.State,
		StateLabel:  label,
		Payable:     o.AwaitingPayment(),
		Subtotal:    format.Cedis(o.Subtotal),
		DeliveryFee: format.Cedis(o.DeliveryFee),
		Total:       format.Cedis(o.Total),
		PartlyPaid:  o.PartiallyPaid(),

		DeliveryAddress: o.DeliveryAddress,
		DeliveryCity:    o.DeliveryCity,
		DeliveryRegion:  o.DeliveryRegion,
		Notes:           o.CustomerNotes,
		CreatedAt:       format.Date(o.CreatedAt),
	}
	if o.AmountPaid.Sign() > 0 {
		view.AmountPaid = format.Cedis(o.AmountPaid)
		view.BalanceDue = format.Cedis(o.BalanceDue)
	}
	view.Items = checkoutLineItems(o.Items)
	return view
}
