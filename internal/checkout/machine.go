// Package checkout implements the checkout/payment flow as a pure state
// machine. Events go in, the next state plus side-effect requests come out;
// no IO happens here, which keeps the flow testable without a UI or network.
// The Driver in this package executes the effects against the backend client,
// and externally-triggered gateway callbacks are injected as events rather
// than handled as nested callbacks.
package checkout

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/paystack"
)

// State is the flow's current position.
type State string

const (
	StateLoading          State = "LOADING"
	StateReady            State = "READY"
	StateSubmitting       State = "SUBMITTING"
	StateOrderCreated     State = "ORDER_CREATED"
	StateSessionRequested State = "PAYMENT_SESSION_REQUESTED"
	StatePopupOpen        State = "POPUP_OPEN"
	StateVerifying        State = "VERIFYING"
	StateCancelled        State = "CANCELLED"
	StateSuccess          State = "SUCCESS"
	StateError            State = "ERROR"
	// StateBlocked is a resume failure: the order exists but cannot be paid.
	// Unlike StateError it does not re-enter READY.
	StateBlocked State = "BLOCKED"
)

// GraceDelay is how long the success navigation waits when server-side
// verification errored but the gateway already reported success.
const GraceDelay = 4 * time.Second

// Generic copy for failures where the backend gave no message of its own.
const (
	msgCheckoutFailed = "Checkout failed. Please try again."
	msgPaymentFailed  = "Could not start payment. Please try again."
	msgScriptNotReady = "Payment system not loaded. Please refresh the page."
	msgPopupCancelled = "Payment cancelled. You can retry anytime."
	msgVerifyDeferred = "Payment received. Processing confirmation..."
	msgNothingToCheck = "Your cart is empty."
	msgLoadFailed     = "Could not load your checkout. Please try again."
)

// Event is an input to the machine.
type Event interface{ isEvent() }

type (
	// EvStart begins the flow. ResumeOrder carries the ?order= query value.
	EvStart struct{ ResumeOrder string }
	// EvCartLoaded delivers the cart snapshot.
	EvCartLoaded struct{ Cart *api.Cart }
	// EvOrderLoaded delivers a resumed order.
	EvOrderLoaded struct{ Order *api.Order }
	// EvProfileLoaded delivers the user's profile for prefill and popup payer data.
	EvProfileLoaded struct{ User *api.User }
	// EvLoadFailed reports a cart/order/profile fetch failure.
	EvLoadFailed struct{ Err error }
	// EvSubmit carries the validated-at-the-edge form values.
	EvSubmit struct {
		Delivery DeliveryDetails
		Intent   PaymentIntent
	}
	// EvOrderFinalized reports the backend accepted the checkout.
	EvOrderFinalized struct{ Order *api.Order }
	// EvFinalizeFailed reports the checkout call was rejected.
	EvFinalizeFailed struct{ Err error }
	// EvSessionIssued delivers a fresh payment session.
	EvSessionIssued struct{ Session *api.PaymentSession }
	// EvSessionFailed reports payment initiation was rejected.
	EvSessionFailed struct{ Err error }
	// EvPopupOpened confirms the gateway popup is showing.
	EvPopupOpened struct{}
	// EvGatewaySuccess is the gateway's asynchronous success callback.
	EvGatewaySuccess struct{ Reference string }
	// EvGatewayClosed is the gateway's user-cancel callback.
	EvGatewayClosed struct{}
	// EvVerified reports server-side confirmation of the payment.
	EvVerified struct{ Result *api.VerifyResult }
	// EvVerifyFailed reports the verification call itself errored.
	EvVerifyFailed struct{ Err error }
)

func (EvStart) isEvent()          {}
func (EvCartLoaded) isEvent()     {}
func (EvOrderLoaded) isEvent()    {}
func (EvProfileLoaded) isEvent()  {}
func (EvLoadFailed) isEvent()     {}
func (EvSubmit) isEvent()         {}
func (EvOrderFinalized) isEvent() {}
func (EvFinalizeFailed) isEvent() {}
func (EvSessionIssued) isEvent()  {}
func (EvSessionFailed) isEvent()  {}
func (EvPopupOpened) isEvent()    {}
func (EvGatewaySuccess) isEvent() {}
func (EvGatewayClosed) isEvent()  {}
func (EvVerified) isEvent()       {}
func (EvVerifyFailed) isEvent()   {}

// Effect is a side-effect request emitted by the machine.
type Effect interface{ isEffect() }

type (
	// FxFetchCart asks for the current cart snapshot.
	FxFetchCart struct{}
	// FxFetchOrder asks for an order to resume.
	FxFetchOrder struct{ OrderNumber string }
	// FxFetchProfile asks for the user's saved profile.
	FxFetchProfile struct{}
	// FxRedirectToCart leaves checkout because there is nothing to pay for.
	FxRedirectToCart struct{}
	// FxFinalizeOrder converts the cart into a committed order.
	FxFinalizeOrder struct{ Request api.CheckoutRequest }
	// FxClearCart empties the local cart snapshot after order adoption.
	FxClearCart struct{}
	// FxRequestSession asks the backend for a fresh payment session.
	FxRequestSession struct {
		OrderNumber  string
		PaymentType  PaymentType
		CustomAmount string
	}
	// FxOpenPopup opens the gateway popup with a prepared setup.
	FxOpenPopup struct{ Setup paystack.Setup }
	// FxVerifyPayment confirms a gateway success server-side.
	FxVerifyPayment struct{ Reference string }
	// FxNavigateSuccess moves to the success view, optionally after a grace delay.
	FxNavigateSuccess struct {
		OrderNumber string
		After       time.Duration
	}
	// FxShowError surfaces an error. Blocking errors disable the form.
	FxShowError struct {
		Message  string
		Field    string
		Blocking bool
	}
	// FxShowNotice surfaces non-fatal informational copy.
	FxShowNotice struct{ Message string }
)

func (FxFetchCart) isEffect()       {}
func (FxFetchOrder) isEffect()      {}
func (FxFetchProfile) isEffect()    {}
func (FxRedirectToCart) isEffect()  {}
func (FxFinalizeOrder) isEffect()   {}
func (FxClearCart) isEffect()       {}
func (FxRequestSession) isEffect()  {}
func (FxOpenPopup) isEffect()       {}
func (FxVerifyPayment) isEffect()   {}
func (FxNavigateSuccess) isEffect() {}
func (FxShowError) isEffect()       {}
func (FxShowNotice) isEffect()      {}

// Options configure a machine instance.
type Options struct {
	Popup       paystack.Builder
	ScriptReady bool
}

// Machine holds the flow state. Not safe for concurrent use; the web layer
// serializes events per session.
type Machine struct {
	opts Options

	state    State
	cart     *api.Cart
	order    *api.Order
	user     *api.User
	delivery DeliveryDetails
	intent   PaymentIntent
	session  *api.PaymentSession
	due      decimal.Decimal

	resumed     bool
	finalized   bool
	cartCleared bool
	blockingMsg string

	awaitingCart bool
}

// NewMachine returns a machine in LOADING.
func NewMachine(opts Options) *Machine {
	return &Machine{opts: opts, state: StateLoading}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Order returns the order-of-record, if one exists.
func (m *Machine) Order() *api.Order { return m.order }

// Cart returns the loaded cart snapshot, nil once cleared.
func (m *Machine) Cart() *api.Cart {
	if m.cartCleared {
		return nil
	}
	return m.cart
}

// Delivery returns the current delivery draft (prefilled or user-edited).
func (m *Machine) Delivery() DeliveryDetails { return m.delivery }

// Resumed reports whether the flow is paying a previously created order.
func (m *Machine) Resumed() bool { return m.resumed }

// BalanceAvailable reports whether the BALANCE option should be offered.
func (m *Machine) BalanceAvailable() bool {
	return BalanceSelectable(m.order, m.resumed)
}

// Total returns the amount the current flow is checking out against.
func (m *Machine) Total() decimal.Decimal {
	if m.order != nil {
		return m.order.Total
	}
	if m.cart != nil {
		return m.cart.Total
	}
	return decimal.Zero
}

// SetScriptReady records the gateway script readiness flag.
func (m *Machine) SetScriptReady(ready bool) { m.opts.ScriptReady = ready }

// EditDelivery records a user edit so later prefills never overwrite it.
func (m *Machine) EditDelivery(d DeliveryDetails) { m.delivery = d }

// Apply feeds one event into the machine and returns the effects to run.
// Unknown or out-of-order events are ignored with no effects; the flow's
// externally-triggered events can arrive late (a popup callback after the
// page moved on) and must not corrupt state.
func (m *Machine) Apply(ev Event) []Effect {
	switch ev := ev.(type) {
	case EvStart:
		return m.onStart(ev)
	case EvOrderLoaded:
		return m.onOrderLoaded(ev)
	case EvCartLoaded:
		return m.onCartLoaded(ev)
	case EvProfileLoaded:
		m.user = ev.User
		if !m.resumed {
			m.delivery.PrefillFromProfile(ev.User)
		}
		return nil
	case EvLoadFailed:
		if m.state != StateLoading {
			return nil
		}
		m.state = StateBlocked
		m.blockingMsg = api.UserMessage(ev.Err, msgLoadFailed)
		return []Effect{FxShowError{Message: m.blockingMsg, Blocking: true}}
	case EvSubmit:
		return m.onSubmit(ev)
	case EvOrderFinalized:
		return m.onOrderFinalized(ev)
	case EvFinalizeFailed:
		if m.state != StateSubmitting {
			return nil
		}
		m.state = StateError
		return []Effect{FxShowError{Message: api.UserMessage(ev.Err, msgCheckoutFailed)}}
	case EvSessionIssued:
		return m.onSessionIssued(ev)
	case EvSessionFailed:
		if m.state != StateOrderCreated && m.state != StateSubmitting {
			return nil
		}
		m.state = StateError
		return []Effect{FxShowError{Message: api.UserMessage(ev.Err, msgPaymentFailed)}}
	case EvPopupOpened:
		if m.state == StateSessionRequested {
			m.state = StatePopupOpen
		}
		return nil
	case EvGatewaySuccess:
		return m.onGatewaySuccess(ev)
	case EvGatewayClosed:
		if m.state != StatePopupOpen && m.state != StateSessionRequested {
			return nil
		}
		m.state = StateCancelled
		m.session = nil // sessions are single-use; retry gets a fresh one
		return []Effect{FxShowNotice{Message: msgPopupCancelled}}
	case EvVerified:
		if m.state != StateVerifying {
			return nil
		}
		m.state = StateSuccess
		return []Effect{FxNavigateSuccess{OrderNumber: m.order.OrderNumber}}
	case EvVerifyFailed:
		if m.state != StateVerifying {
			return nil
		}
		// The gateway already reported the charge; a failed confirmation call
		// must not strand the customer on the form. Navigate after a grace
		// delay and let the backend reconcile.
		m.state = StateSuccess
		return []Effect{
			FxShowNotice{Message: msgVerifyDeferred},
			FxNavigateSuccess{OrderNumber: m.order.OrderNumber, After: GraceDelay},
		}
	}
	return nil
}

func (m *Machine) onStart(ev EvStart) []Effect {
	if m.state != StateLoading {
		return nil
	}
	if ev.ResumeOrder != "" {
		return []Effect{FxFetchOrder{OrderNumber: ev.ResumeOrder}, FxFetchProfile{}}
	}
	m.awaitingCart = true
	return []Effect{FxFetchCart{}, FxFetchProfile{}}
}

func (m *Machine) onOrderLoaded(ev EvOrderLoaded) []Effect {
	if m.state != StateLoading || ev.Order == nil {
		return nil
	}
	if !ev.Order.AwaitingPayment() {
		m.state = StateBlocked
		state := ev.Order.State
		if ev.Order.StateDisplay != "" {
			state = ev.Order.StateDisplay
		}
		m.blockingMsg = fmt.Sprintf("Order %s is not pending payment (State: %s)", ev.Order.OrderNumber, state)
		return []Effect{FxShowError{Message: m.blockingMsg, Blocking: true}}
	}
	m.order = ev.Order
	m.resumed = true
	m.finalized = true // the order already exists; never re-finalize
	m.delivery.PrefillFromOrder(ev.Order)
	m.state = StateReady
	return nil
}

func (m *Machine) onCartLoaded(ev EvCartLoaded) []Effect {
	if m.state != StateLoading || !m.awaitingCart {
		return nil
	}
	m.awaitingCart = false
	m.cart = ev.Cart
	if ev.Cart.Empty() {
		m.state = StateBlocked
		m.blockingMsg = msgNothingToCheck
		return []Effect{FxRedirectToCart{}}
	}
	m.state = StateReady
	return nil
}

func (m *Machine) onSubmit(ev EvSubmit) []Effect {
	switch m.state {
	case StateReady, StateCancelled, StateError:
		// submittable
	case StateSubmitting, StateOrderCreated, StateSessionRequested, StatePopupOpen, StateVerifying:
		// a chain is already in flight; a double-click must not create a
		// second order or session
		return nil
	default:
		return nil
	}

	if err := ev.Delivery.Validate(); err != nil {
		return []Effect{FxShowError{Message: err.Message, Field: err.Field}}
	}
	if ev.Intent.Type == PayBalance && !m.BalanceAvailable() {
		return []Effect{FxShowError{
			Field:   "payment_type",
			Message: "Balance payment is only available on a partially paid order.",
		}}
	}
	amountPaid := decimal.Zero
	if m.order != nil {
		amountPaid = m.order.AmountPaid
	}
	due, err := ev.Intent.DueAmount(m.Total(), amountPaid)
	if err != nil {
		ie, ok := err.(*IntentError)
		if !ok {
			ie = &IntentError{Message: err.Error()}
		}
		return []Effect{FxShowError{Message: ie.Message, Field: ie.Field}}
	}
	if !m.opts.ScriptReady {
		return []Effect{FxShowError{Message: msgScriptNotReady}}
	}

	m.delivery = ev.Delivery
	m.intent = ev.Intent
	m.due = due
	m.state = StateSubmitting

	if m.finalized {
		// An order-of-record already exists (resume, or a retry after a
		// cancelled popup); finalization happens at most once per flow.
		return []Effect{m.requestSessionEffect()}
	}
	req := api.CheckoutRequest{
		DeliveryAddress: ev.Delivery.Address,
		DeliveryCity:    ev.Delivery.City,
		DeliveryRegion:  ev.Delivery.Region,
		CustomerNotes:   ev.Delivery.Notes,
		PaymentType:     string(ev.Intent.Type),
	}
	if ev.Intent.Type == PayCustom {
		req.CustomAmount = ev.Intent.CustomAmount.StringFixed(2)
	}
	return []Effect{FxFinalizeOrder{Request: req}}
}

func (m *Machine) onOrderFinalized(ev EvOrderFinalized) []Effect {
	if m.state != StateSubmitting || ev.Order == nil {
		return nil
	}
	m.order = ev.Order
	m.finalized = true
	m.cartCleared = true // the order owns the items now
	m.state = StateOrderCreated

	// Recompute against the committed order so backend-side figures
	// (deposit, fees) win over the cart estimate.
	if due, err := m.intent.DueForOrder(ev.Order); err == nil {
		m.due = due
	}
	return []Effect{FxClearCart{}, m.requestSessionEffect()}
}

func (m *Machine) requestSessionEffect() Effect {
	fx := FxRequestSession{
		OrderNumber: m.order.OrderNumber,
		PaymentType: m.intent.Type,
	}
	if m.intent.Type == PayCustom {
		fx.CustomAmount = m.intent.CustomAmount.StringFixed(2)
	}
	return fx
}

func (m *Machine) onSessionIssued(ev EvSessionIssued) []Effect {
	if (m.state != StateOrderCreated && m.state != StateSubmitting) || ev.Session == nil {
		return nil
	}
	if !m.opts.ScriptReady {
		m.state = StateError
		return []Effect{FxShowError{Message: msgScriptNotReady}}
	}
	m.session = ev.Session
	m.state = StateSessionRequested

	payer := paystack.Payer{}
	if m.user != nil {
		payer = paystack.Payer{Email: m.user.Email, Name: m.user.FullName(), Phone: m.user.Phone}
	}
	setup := m.opts.Popup.Build(ev.Session.Reference, m.order.OrderNumber, m.due, payer)
	return []Effect{FxOpenPopup{Setup: setup}}
}

func (m *Machine) onGatewaySuccess(ev EvGatewaySuccess) []Effect {
	if m.state != StatePopupOpen && m.state != StateSessionRequested {
		return nil
	}
	m.state = StateVerifying
	return []Effect{FxVerifyPayment{Reference: ev.Reference}}
}

// Rehydrate restores a machine whose flow progressed in an earlier request.
// The order-of-record is adopted as already finalized, so gateway callbacks
// and retries delivered to a fresh machine continue the same flow.
func (m *Machine) Rehydrate(order *api.Order, st State) {
	m.order = order
	m.finalized = order != nil
	m.resumed = order != nil
	m.state = st
}

// BlockingMessage returns the banner text for a blocked flow, empty otherwise.
func (m *Machine) BlockingMessage() string { return m.blockingMsg }

// Submittable reports whether the form accepts a submission right now.
func (m *Machine) Submittable() bool {
	switch m.state {
	case StateReady, StateCancelled, StateError:
		return true
	}
	return false
}
