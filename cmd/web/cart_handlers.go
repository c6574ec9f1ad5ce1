package main

import (
	"net/http"
)

// CartHandler renders the authenticated user's cart with the checkout entry
// point. Cart mutation happens against the backend directly; this page is a
// snapshot plus the door into checkout.
func CartHandler(w http.ResponseWriter, r *http.Request) {
	cart, err := apiClient.GetCart(apiCtx(r))
	if err != nil {
		renderBackendError(w, r, err, "Could not load your cart right now.")
		return
	}

	vm := newPageData(r, "Your Cart")
	vm.SEO.Robots = "noindex, nofollow"
	vm.Cart = buildCartView(cart)
	renderPage(w, r, "cart", vm)
}
