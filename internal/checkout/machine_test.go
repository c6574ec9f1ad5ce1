package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/paystack"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testCart() *api.Cart {
	return &api.Cart{
		Items:       []api.OrderItem{{ProductName: "iPhone 15", Quantity: 1, UnitPrice: d("980.00"), TotalPrice: d("980.00")}},
		Subtotal:    d("980.00"),
		DeliveryFee: d("20.00"),
		Total:       d("1000.00"),
	}
}

func pendingOrder() *api.Order {
	return &api.Order{
		OrderNumber: "LI-1001",
		State:       api.OrderStatePendingPayment,
		Subtotal:    d("980.00"),
		DeliveryFee: d("20.00"),
		Total:       d("1000.00"),
	}
}

func validDelivery() DeliveryDetails {
	return DeliveryDetails{Address: "12 Oxford St", City: "Accra", Region: "Greater Accra"}
}

func readyMachine(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine(Options{
		Popup:       paystack.Builder{PublicKey: "pk_test_x", Currency: "GHS"},
		ScriptReady: true,
	})
	require.Empty(t, filterVisible(m.Apply(EvStart{})))
	m.Apply(EvCartLoaded{Cart: testCart()})
	require.Equal(t, StateReady, m.State())
	return m
}

// filterVisible drops fetch effects so assertions focus on user-facing ones.
func filterVisible(effects []Effect) []Effect {
	var out []Effect
	for _, fx := range effects {
		switch fx.(type) {
		case FxFetchCart, FxFetchOrder, FxFetchProfile:
		default:
			out = append(out, fx)
		}
	}
	return out
}

func TestFullHappyPath(t *testing.T) {
	m := readyMachine(t)

	effects := m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	require.Len(t, effects, 1)
	fin, ok := effects[0].(FxFinalizeOrder)
	require.True(t, ok)
	assert.Equal(t, "FULL", fin.Request.PaymentType)
	assert.Equal(t, "Accra", fin.Request.DeliveryCity)
	assert.Equal(t, StateSubmitting, m.State())

	effects = m.Apply(EvOrderFinalized{Order: pendingOrder()})
	require.Len(t, effects, 2)
	assert.IsType(t, FxClearCart{}, effects[0])
	sess, ok := effects[1].(FxRequestSession)
	require.True(t, ok)
	assert.Equal(t, "LI-1001", sess.OrderNumber)
	assert.Equal(t, PayFull, sess.PaymentType)
	assert.Nil(t, m.Cart())

	effects = m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "LI-1001-abc12345"}})
	require.Len(t, effects, 1)
	popup, ok := effects[0].(FxOpenPopup)
	require.True(t, ok)
	assert.Equal(t, "LI-1001-abc12345", popup.Setup.Ref)
	assert.Equal(t, int64(100000), popup.Setup.Amount)
	m.Apply(EvPopupOpened{})
	assert.Equal(t, StatePopupOpen, m.State())

	effects = m.Apply(EvGatewaySuccess{Reference: "LI-1001-abc12345"})
	require.Len(t, effects, 1)
	verify, ok := effects[0].(FxVerifyPayment)
	require.True(t, ok)
	assert.Equal(t, "LI-1001-abc12345", verify.Reference)
	assert.Equal(t, StateVerifying, m.State())

	effects = m.Apply(EvVerified{Result: &api.VerifyResult{Success: true}})
	require.Len(t, effects, 1)
	nav, ok := effects[0].(FxNavigateSuccess)
	require.True(t, ok)
	assert.Equal(t, "LI-1001", nav.OrderNumber)
	assert.Zero(t, nav.After)
	assert.Equal(t, StateSuccess, m.State())
}

func TestDepositDueAmount(t *testing.T) {
	m := readyMachine(t)
	m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayDeposit}})
	m.Apply(EvOrderFinalized{Order: pendingOrder()})
	effects := m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "ref"}})
	require.Len(t, effects, 1)
	popup := effects[0].(FxOpenPopup)
	// 30% of GHS 1000.00 in pesewas
	assert.Equal(t, int64(30000), popup.Setup.Amount)
}

func TestDoubleSubmitIsIgnored(t *testing.T) {
	m := readyMachine(t)
	ev := EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}}

	first := m.Apply(ev)
	require.Len(t, first, 1)
	require.IsType(t, FxFinalizeOrder{}, first[0])

	// Second click while the finalize call is in flight.
	assert.Empty(t, m.Apply(ev))
	assert.Equal(t, StateSubmitting, m.State())

	m.Apply(EvOrderFinalized{Order: pendingOrder()})
	assert.Empty(t, m.Apply(ev))
}

func TestCancelReturnsFormToSubmittableState(t *testing.T) {
	m := readyMachine(t)
	m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	m.Apply(EvOrderFinalized{Order: pendingOrder()})
	m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "ref-1"}})
	m.Apply(EvPopupOpened{})

	effects := m.Apply(EvGatewayClosed{})
	require.Len(t, effects, 1)
	assert.IsType(t, FxShowNotice{}, effects[0])
	assert.Equal(t, StateCancelled, m.State())
	assert.True(t, m.Submittable())
}

func TestRetryAfterCancelSkipsFinalizeAndGetsFreshSession(t *testing.T) {
	m := readyMachine(t)
	m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	m.Apply(EvOrderFinalized{Order: pendingOrder()})
	m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "ref-1"}})
	m.Apply(EvPopupOpened{})
	m.Apply(EvGatewayClosed{})

	effects := m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	require.Len(t, effects, 1)
	sess, ok := effects[0].(FxRequestSession)
	require.True(t, ok, "retry must request a session, not finalize a second order")
	assert.Equal(t, "LI-1001", sess.OrderNumber)

	effects = m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "ref-2"}})
	require.Len(t, effects, 1)
	popup := effects[0].(FxOpenPopup)
	assert.Equal(t, "ref-2", popup.Setup.Ref, "each attempt uses a fresh reference")
}

func TestVerifyFailureStillNavigatesAfterGraceDelay(t *testing.T) {
	m := readyMachine(t)
	m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	m.Apply(EvOrderFinalized{Order: pendingOrder()})
	m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "ref"}})
	m.Apply(EvPopupOpened{})
	m.Apply(EvGatewaySuccess{Reference: "ref"})

	effects := m.Apply(EvVerifyFailed{Err: assert.AnError})
	require.Len(t, effects, 2)
	assert.IsType(t, FxShowNotice{}, effects[0])
	nav := effects[1].(FxNavigateSuccess)
	assert.Equal(t, "LI-1001", nav.OrderNumber)
	assert.Equal(t, 4*time.Second, nav.After)
	assert.Equal(t, StateSuccess, m.State())
}

func TestResumePendingOrderSkipsFinalize(t *testing.T) {
	m := NewMachine(Options{Popup: paystack.Builder{PublicKey: "pk"}, ScriptReady: true})
	effects := m.Apply(EvStart{ResumeOrder: "LI-1001"})
	require.Len(t, effects, 2)
	assert.IsType(t, FxFetchOrder{}, effects[0])

	order := pendingOrder()
	order.DeliveryAddress = "12 Oxford St"
	order.DeliveryCity = "Accra"
	order.DeliveryRegion = "Greater Accra"
	m.Apply(EvOrderLoaded{Order: order})
	require.Equal(t, StateReady, m.State())
	assert.True(t, m.Resumed())
	assert.Equal(t, "Accra", m.Delivery().City)

	effects = m.Apply(EvSubmit{Delivery: m.Delivery(), Intent: PaymentIntent{Type: PayFull}})
	require.Len(t, effects, 1)
	assert.IsType(t, FxRequestSession{}, effects[0])
}

func TestResumeNonPendingOrderBlocksWithoutSessionRequest(t *testing.T) {
	m := NewMachine(Options{Popup: paystack.Builder{PublicKey: "pk"}, ScriptReady: true})
	m.Apply(EvStart{ResumeOrder: "LI-1001"})

	effects := m.Apply(EvOrderLoaded{Order: &api.Order{
		OrderNumber: "LI-1001",
		State:       api.OrderStatePaid,
		Total:       d("1000.00"),
	}})
	require.Len(t, effects, 1)
	show := effects[0].(FxShowError)
	assert.Equal(t, "Order LI-1001 is not pending payment (State: PAID)", show.Message)
	assert.True(t, show.Blocking)
	assert.Equal(t, StateBlocked, m.State())
	assert.False(t, m.Submittable())

	// Submitting against a blocked flow must not reach the backend.
	effects = m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	assert.Empty(t, effects)
}

func TestResumeNonPendingOrderUsesDisplayState(t *testing.T) {
	m := NewMachine(Options{ScriptReady: true})
	m.Apply(EvStart{ResumeOrder: "LI-1002"})
	effects := m.Apply(EvOrderLoaded{Order: &api.Order{
		OrderNumber:  "LI-1002",
		State:        "PARTIALLY_PAID",
		StateDisplay: "Partially Paid",
	}})
	require.Len(t, effects, 1)
	assert.Equal(t, "Order LI-1002 is not pending payment (State: Partially Paid)", effects[0].(FxShowError).Message)
}

func TestBalanceOnResumedPartiallyPaidOrder(t *testing.T) {
	m := NewMachine(Options{Popup: paystack.Builder{PublicKey: "pk"}, ScriptReady: true})
	m.Apply(EvStart{ResumeOrder: "LI-1001"})
	order := pendingOrder()
	order.AmountPaid = d("300.00")
	order.BalanceDue = d("700.00")
	m.Apply(EvOrderLoaded{Order: order})
	require.True(t, m.BalanceAvailable())

	m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayBalance}})
	effects := m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "ref"}})
	require.Len(t, effects, 1)
	assert.Equal(t, int64(70000), effects[0].(FxOpenPopup).Setup.Amount)
}

func TestBalanceRejectedOnFreshCheckout(t *testing.T) {
	m := readyMachine(t)
	effects := m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayBalance}})
	require.Len(t, effects, 1)
	show := effects[0].(FxShowError)
	assert.Equal(t, "payment_type", show.Field)
	assert.Equal(t, StateReady, m.State())
}

func TestEmptyCartRedirects(t *testing.T) {
	m := NewMachine(Options{ScriptReady: true})
	m.Apply(EvStart{})
	effects := m.Apply(EvCartLoaded{Cart: &api.Cart{}})
	require.Len(t, effects, 1)
	assert.IsType(t, FxRedirectToCart{}, effects[0])
	assert.Equal(t, StateBlocked, m.State())
}

func TestSubmitFailsFastWhenScriptNotReady(t *testing.T) {
	m := NewMachine(Options{ScriptReady: false})
	m.Apply(EvStart{})
	m.Apply(EvCartLoaded{Cart: testCart()})

	effects := m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	require.Len(t, effects, 1)
	show := effects[0].(FxShowError)
	assert.Contains(t, show.Message, "Payment system not loaded")
	assert.Equal(t, StateReady, m.State(), "no order is finalized when the script is missing")
}

func TestInvalidCustomAmountStaysReady(t *testing.T) {
	m := readyMachine(t)
	effects := m.Apply(EvSubmit{
		Delivery: validDelivery(),
		Intent:   PaymentIntent{Type: PayCustom, CustomAmount: d("0.50")},
	})
	require.Len(t, effects, 1)
	show := effects[0].(FxShowError)
	assert.Equal(t, "custom_amount", show.Field)
	assert.Equal(t, "Minimum payment amount is GHS 1.00.", show.Message)
	assert.True(t, m.Submittable())
}

func TestCheckoutFailureSurfacesBackendMessage(t *testing.T) {
	m := readyMachine(t)
	m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})

	effects := m.Apply(EvFinalizeFailed{Err: &api.Error{Status: 400, Message: "Cart is empty"}})
	require.Len(t, effects, 1)
	assert.Equal(t, "Cart is empty", effects[0].(FxShowError).Message)
	assert.Equal(t, StateError, m.State())
	assert.True(t, m.Submittable())
}

func TestLateGatewayEventsAreIgnored(t *testing.T) {
	m := readyMachine(t)
	m.Apply(EvSubmit{Delivery: validDelivery(), Intent: PaymentIntent{Type: PayFull}})
	m.Apply(EvOrderFinalized{Order: pendingOrder()})
	m.Apply(EvSessionIssued{Session: &api.PaymentSession{Reference: "ref"}})
	m.Apply(EvPopupOpened{})
	m.Apply(EvGatewaySuccess{Reference: "ref"})
	m.Apply(EvVerified{Result: &api.VerifyResult{Success: true}})
	require.Equal(t, StateSuccess, m.State())

	// A straggling close callback after success changes nothing.
	assert.Empty(t, m.Apply(EvGatewayClosed{}))
	assert.Equal(t, StateSuccess, m.State())
}

func TestProfilePrefillDoesNotOverwriteResumedOrder(t *testing.T) {
	m := NewMachine(Options{ScriptReady: true})
	m.Apply(EvStart{ResumeOrder: "LI-1001"})
	order := pendingOrder()
	order.DeliveryCity = "Kumasi"
	m.Apply(EvOrderLoaded{Order: order})
	m.Apply(EvProfileLoaded{User: &api.User{City: "Accra"}})
	assert.Equal(t, "Kumasi", m.Delivery().City)
}
