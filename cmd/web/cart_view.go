package main

import (
	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/format"
	"londonsimports.org/imports-web/internal/money"
)

// CartView drives the cart page.
type CartView struct {
	Empty       bool
	Items       []CartLineItem
	Subtotal    string
	DeliveryFee string
	Total       string
	Deposit     string
}

// CartLineItem is one cart row.
type CartLineItem struct {
	Name      string
	SKU       string
	Quantity  int
	UnitPrice string
	Total     string
}

func buildCartView(cart *api.Cart) CartView {
	if cart.Empty() {
		return CartView{Empty: true}
	}
	view := CartView{
		Subtotal:    format.Cedis(cart.Subtotal),
		DeliveryFee: format.Cedis(cart.DeliveryFee),
		Total:       format.Cedis(cart.Total),
		Deposit:     format.Cedis(money.Deposit(cart.Total)),
	}
	view.Items = make([]CartLineItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		view.Items = append(view.Items, CartLineItem{
			Name:      it.ProductName,
			SKU:       it.ProductSKU,
			Quantity:  it.Quantity,
			UnitPrice: format.Cedis(it.UnitPrice),
			Total:     format.Cedis(it.TotalPrice),
		})
	}
	return view
}
