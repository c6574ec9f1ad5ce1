package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"londonsimports.org/imports-web/internal/api"
)

// OrdersHandler renders the order history.
func OrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := apiClient.ListOrders(apiCtx(r))
	if err != nil {
		renderBackendError(w, r, err, "Could not load your orders right now.")
		return
	}

	vm := newPageData(r, "My Orders")
	vm.SEO.Robots = "noindex, nofollow"
	vm.Orders = buildOrdersView(orders)
	renderPage(w, r, "orders", vm)
}

// OrderDetailHandler renders one order. Pending orders link back into
// checkout via /checkout?order=<number>.
func OrderDetailHandler(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	order, err := apiClient.GetOrder(apiCtx(r), number)
	if err != nil {
		if api.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		renderBackendError(w, r, err, "Could not load this order right now.")
		return
	}

	vm := newPageData(r, "Order "+order.OrderNumber)
	vm.SEO.Robots = "noindex, nofollow"
	vm.Order = buildOrderView(order)
	renderPage(w, r, "order", vm)
}
