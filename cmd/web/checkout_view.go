package main

import (
	"github.com/shopspring/decimal"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/checkout"
	"londonsimports.org/imports-web/internal/format"
	"londonsimports.org/imports-web/internal/money"
)

// CheckoutView drives the /checkout page.
type CheckoutView struct {
	Blocking string // non-empty disables the whole form

	Resumed     bool
	OrderNumber string

	Items       []CheckoutLineItem
	Subtotal    string
	DeliveryFee string
	Total       string

	Delivery checkout.DeliveryDetails
	Regions  []string

	PaymentOptions []PaymentOption
	SelectedType   string
	CustomAmount   string

	AmountPaid string
	BalanceDue string

	FieldErrors map[string]string
	Notices     []string

	ScriptURL string
}

// CheckoutLineItem is one summary row.
type CheckoutLineItem struct {
	Name     string
	Quantity int
	Price    string
}

// PaymentOption is one selectable payment type with its due amount.
type PaymentOption struct {
	Type     string
	Label    string
	Detail   string
	Due      string
	Custom   bool
	Selected bool
}

func buildCheckoutView(m *checkout.Machine, p *responsePresenter, selectedType, customAmount string) CheckoutView {
	view := CheckoutView{
		Resumed:      m.Resumed(),
		Delivery:     m.Delivery(),
		Regions:      checkout.Regions,
		FieldErrors:  p.fieldErrors(),
		Notices:      p.notices,
		Blocking:     p.blockingError(),
		SelectedType: selectedType,
		CustomAmount: customAmount,
		ScriptURL:    cfg.Paystack.ScriptURL,
	}
	if view.Blocking == "" {
		view.Blocking = m.BlockingMessage()
	}
	if view.SelectedType == "" {
		view.SelectedType = string(checkout.PayFull)
	}

	total := m.Total()
	view.Total = format.Cedis(total)

	if order := m.Order(); order != nil {
		view.OrderNumber = order.OrderNumber
		view.Subtotal = format.Cedis(order.Subtotal)
		view.DeliveryFee = format.Cedis(order.DeliveryFee)
		view.Items = checkoutLineItems(order.Items)
		if order.AmountPaid.Sign() > 0 {
			view.AmountPaid = format.Cedis(order.AmountPaid)
			view.BalanceDue = format.Cedis(order.BalanceDue)
		}
	} else if cart := m.Cart(); cart != nil {
		view.Subtotal = format.Cedis(cart.Subtotal)
		view.DeliveryFee = format.Cedis(cart.DeliveryFee)
		view.Items = checkoutLineItems(cart.Items)
	}

	view.PaymentOptions = buildPaymentOptions(m, total, view.SelectedType)
	return view
}

func buildPaymentOptions(m *checkout.Machine, total decimal.Decimal, selected string) []PaymentOption {
	opts := []PaymentOption{
		{
			Type:   string(checkout.PayFull),
			Label:  "Pay in full",
			Due:    format.Cedis(total),
			Detail: "Settle the whole order now.",
		},
		{
			Type:   string(checkout.PayDeposit),
			Label:  "30% deposit",
			Due:    format.Cedis(money.Deposit(total)),
			Detail: "Secure your pre-order; pay the balance before delivery.",
		},
		{
			Type:   string(checkout.PayCustom),
			Label:  "Custom amount",
			Custom: true,
			Detail: "Pay any amount from GHS 1.00 up to the order total.",
		},
	}
	if m.BalanceAvailable() {
		order := m.Order()
		opts = append(opts, PaymentOption{
			Type:   string(checkout.PayBalance),
			Label:  "Pay remaining balance",
			Due:    format.Cedis(order.BalanceDue),
			Detail: "Clear what is left on this order.",
		})
	}
	for i := range opts {
		opts[i].Selected = opts[i].Type == selected
	}
	return opts
}

func checkoutLineItems(items []api.OrderItem) []CheckoutLineItem {
	out := make([]CheckoutLineItem, 0, len(items))
	for _, it := range items {
		out = append(out, CheckoutLineItem{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Price:    format.Cedis(it.TotalPrice),
		})
	}
	return out
}
