package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/checkout"
	mw "londonsimports.org/imports-web/internal/middleware"
	"londonsimports.org/imports-web/internal/money"
	"londonsimports.org/imports-web/internal/paystack"
)

func apiCtx(r *http.Request) context.Context {
	return api.WithToken(r.Context(), mw.GetSession(r).Token)
}

// CheckoutPageHandler renders the checkout form. ?order=<number> resumes a
// previously created order; otherwise a checkout in progress from this
// session is picked up, and failing that the current cart is loaded.
func CheckoutPageHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	resume := strings.TrimSpace(r.URL.Query().Get("order"))
	if resume == "" {
		resume = sess.Checkout.OrderNumber
	}

	p := &responsePresenter{}
	drv := newCheckoutDriver(p, true)
	drv.Dispatch(apiCtx(r), checkout.EvStart{ResumeOrder: resume})
	m := drv.Machine()

	if p.toCart {
		sess.AddFlash("info", "Your cart is empty.")
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if order := m.Order(); order != nil {
		sess.SetCheckoutProgress(mw.CheckoutProgress{OrderNumber: order.OrderNumber})
	} else if m.Submittable() && sess.Checkout.AttemptKey == "" {
		// one finalize key per rendered form; double submits replay it
		sess.SetCheckoutProgress(mw.CheckoutProgress{AttemptKey: uuid.NewString()})
	}

	view := buildCheckoutView(m, p, "", "")
	vm := newPageData(r, "Checkout")
	vm.SEO.Robots = "noindex, nofollow"
	vm.Checkout = view
	renderPage(w, r, "checkout", vm)
}

// CheckoutSubmitHandler finalizes the order (at most once per flow) and
// requests a payment session. On success the response carries the popup
// setup in an HX-Trigger header for the browser-side gateway bridge.
func CheckoutSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess := mw.GetSession(r)

	delivery := checkout.DeliveryDetails{
		Address: strings.TrimSpace(r.FormValue("address")),
		City:    strings.TrimSpace(r.FormValue("city")),
		Region:  strings.TrimSpace(r.FormValue("region")),
		Notes:   strings.TrimSpace(r.FormValue("notes")),
	}

	intent, ferr := parsePaymentForm(r)
	if ferr != nil {
		respondCheckoutErrors(w, r, map[string]string{ferr.Field: ferr.Message}, nil)
		return
	}

	scriptReady := r.FormValue("script_ready") == "1"
	p := &responsePresenter{}
	drv := newCheckoutDriver(p, scriptReady)
	ctx := api.WithIdempotencyKey(apiCtx(r), sess.Checkout.AttemptKey)

	drv.Dispatch(ctx, checkout.EvStart{ResumeOrder: sess.Checkout.OrderNumber})
	m := drv.Machine()
	if p.toCart {
		hxRedirect(w, r, "/cart")
		return
	}
	if blocking := p.blockingError(); blocking != "" {
		respondCheckoutErrors(w, r, map[string]string{"_form": blocking}, nil)
		return
	}

	drv.Dispatch(ctx, checkout.EvSubmit{Delivery: delivery, Intent: intent})

	if order := m.Order(); order != nil {
		progress := mw.CheckoutProgress{OrderNumber: order.OrderNumber}
		if p.popup != nil {
			progress.Reference = p.popup.Ref
		}
		sess.SetCheckoutProgress(progress)
	}

	if p.popup != nil {
		respondCheckoutPopup(w, r, *p.popup)
		return
	}
	respondCheckoutErrors(w, r, p.fieldErrors(), p.notices)
}

// CheckoutVerifyHandler receives the gateway's success callback from the
// browser bridge and confirms the payment server-side. Verification always
// runs before navigating; a verification error still navigates after the
// grace delay because the gateway already reported the charge.
func CheckoutVerifyHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	reference := callbackReference(r)
	if reference == "" {
		reference = sess.Checkout.Reference
	}
	if reference == "" || sess.Checkout.OrderNumber == "" {
		http.Error(w, "no payment in progress", http.StatusConflict)
		return
	}

	p := &responsePresenter{}
	drv := newCheckoutDriver(p, true)
	drv.Machine().Rehydrate(&api.Order{
		OrderNumber: sess.Checkout.OrderNumber,
		State:       api.OrderStatePendingPayment,
	}, checkout.StatePopupOpen)

	drv.Dispatch(apiCtx(r), checkout.EvGatewaySuccess{Reference: reference})

	if !p.navigated {
		respondCheckoutErrors(w, r, p.fieldErrors(), p.notices)
		return
	}
	sess.ClearCheckoutProgress()
	for _, n := range p.notices {
		sess.AddFlash("info", n)
	}
	hxNavigate(w, r, "/checkout/success?order="+p.navOrder, p.navAfter)
}

// CheckoutCancelledHandler receives the gateway's close callback. The order
// is kept so a retry skips finalization and gets a fresh session.
func CheckoutCancelledHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	if sess.Checkout.OrderNumber == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	p := &responsePresenter{}
	drv := newCheckoutDriver(p, true)
	drv.Machine().Rehydrate(&api.Order{
		OrderNumber: sess.Checkout.OrderNumber,
		State:       api.OrderStatePendingPayment,
	}, checkout.StatePopupOpen)
	drv.Cancel(apiCtx(r))

	// drop the spent reference; the next attempt gets a new one
	sess.SetCheckoutProgress(mw.CheckoutProgress{OrderNumber: sess.Checkout.OrderNumber})
	respondCheckoutErrors(w, r, nil, p.notices)
}

// CheckoutSuccessHandler renders the post-payment confirmation page.
func CheckoutSuccessHandler(w http.ResponseWriter, r *http.Request) {
	sess := mw.GetSession(r)
	orderNumber := strings.TrimSpace(r.URL.Query().Get("order"))
	sess.ClearCheckoutProgress()

	vm := newPageData(r, "Order Confirmed")
	vm.SEO.Robots = "noindex, nofollow"

	if orderNumber != "" {
		// best effort; the page still renders if the fetch fails
		if order, err := apiClient.GetOrder(apiCtx(r), orderNumber); err == nil {
			vm.Order = buildOrderView(order)
		} else {
			vm.Order = OrderView{OrderNumber: orderNumber}
		}
	}
	renderPage(w, r, "checkout_success", vm)
}

func parsePaymentForm(r *http.Request) (checkout.PaymentIntent, *checkout.IntentError) {
	ptype, err := checkout.ParsePaymentType(strings.TrimSpace(r.FormValue("payment_type")))
	if err != nil {
		return checkout.PaymentIntent{}, &checkout.IntentError{Field: "payment_type", Message: "Select a payment option."}
	}
	intent := checkout.PaymentIntent{Type: ptype}
	if ptype == checkout.PayCustom {
		raw := strings.TrimSpace(r.FormValue("custom_amount"))
		amount, err := money.Parse(raw)
		if err != nil {
			return checkout.PaymentIntent{}, &checkout.IntentError{Field: "custom_amount", Message: "Enter a valid amount."}
		}
		intent.CustomAmount = amount
	}
	return intent, nil
}

// callbackReference extracts the transaction reference from the gateway
// bridge POST, which sends the popup callback payload as JSON.
func callbackReference(r *http.Request) string {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var cb paystack.CallbackResponse
		if err := json.NewDecoder(r.Body).Decode(&cb); err == nil {
			if cb.Reference != "" {
				return cb.Reference
			}
			return cb.TrxRef
		}
		return ""
	}
	_ = r.ParseForm()
	if ref := strings.TrimSpace(r.FormValue("reference")); ref != "" {
		return ref
	}
	return strings.TrimSpace(r.FormValue("trxref"))
}

func respondCheckoutPopup(w http.ResponseWriter, r *http.Request, setup paystack.Setup) {
	if mw.IsHTMX(r.Context()) {
		payload := map[string]any{"checkout:popup": setup}
		if raw, err := json.Marshal(payload); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
		renderTemplate(w, r, "checkout_status", map[string]any{
			"Tone":  "info",
			"Title": "Opening secure payment...",
		})
		return
	}
	// no-JS fallback: the popup cannot open, so park the user back on the
	// form with the order preserved
	mw.GetSession(r).AddFlash("info", "Your order is saved. Enable JavaScript to complete payment.")
	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

func respondCheckoutErrors(w http.ResponseWriter, r *http.Request, fieldErrs map[string]string, notices []string) {
	if mw.IsHTMX(r.Context()) {
		trigger := map[string]any{"checkout:errors": fieldErrs}
		if len(notices) > 0 {
			trigger["checkout:notices"] = notices
		}
		if raw, err := json.Marshal(trigger); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
		status := http.StatusOK
		if len(fieldErrs) > 0 {
			status = http.StatusUnprocessableEntity
		}
		w.WriteHeader(status)
		renderTemplate(w, r, "checkout_status", map[string]any{
			"Tone":    statusTone(fieldErrs),
			"Title":   firstMessage(fieldErrs, notices),
			"Notices": notices,
		})
		return
	}
	sess := mw.GetSession(r)
	for _, msg := range fieldErrs {
		sess.AddFlash("error", msg)
	}
	for _, n := range notices {
		sess.AddFlash("info", n)
	}
	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

func statusTone(fieldErrs map[string]string) string {
	if len(fieldErrs) > 0 {
		return "error"
	}
	return "info"
}

func firstMessage(fieldErrs map[string]string, notices []string) string {
	for _, key := range []string{"_form", "payment_type", "custom_amount", "address", "city", "region"} {
		if msg, ok := fieldErrs[key]; ok {
			return msg
		}
	}
	for _, msg := range fieldErrs {
		return msg
	}
	if len(notices) > 0 {
		return notices[0]
	}
	return ""
}

func hxRedirect(w http.ResponseWriter, r *http.Request, url string) {
	if mw.IsHTMX(r.Context()) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// hxNavigate instructs the browser bridge to move to url, optionally after a
// delay. The delayed form is the verification soft-fail path.
func hxNavigate(w http.ResponseWriter, r *http.Request, url string, after time.Duration) {
	if mw.IsHTMX(r.Context()) {
		payload := map[string]any{
			"checkout:navigate": map[string]any{
				"url":     url,
				"afterMs": after.Milliseconds(),
			},
		}
		if raw, err := json.Marshal(payload); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
