package checkout

import (
	"context"
	"time"

	"go.uber.org/zap"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/metrics"
	"londonsimports.org/imports-web/internal/paystack"
)

// Backend is the slice of the API client the checkout flow needs.
// *api.Client satisfies it.
type Backend interface {
	GetCart(ctx context.Context) (*api.Cart, error)
	GetOrder(ctx context.Context, orderNumber string) (*api.Order, error)
	Checkout(ctx context.Context, req api.CheckoutRequest) (*api.Order, error)
	InitiatePayment(ctx context.Context, orderNumber, paymentType, customAmount string) (*api.PaymentSession, error)
	VerifyPayment(ctx context.Context, reference string) (*api.VerifyResult, error)
	Me(ctx context.Context) (*api.User, error)
}

// Presenter receives the flow's user-visible outcomes. The web layer
// implements it over session flashes, response headers and redirects.
type Presenter interface {
	ShowError(message, field string, blocking bool)
	ShowNotice(message string)
	OpenPopup(setup paystack.Setup)
	NavigateToSuccess(orderNumber string, after time.Duration)
	RedirectToCart()
	ClearCart()
}

// Driver runs a machine against a backend and presenter, feeding call
// results back in as events until the machine settles.
type Driver struct {
	machine *Machine
	backend Backend
	present Presenter
	logger  *zap.Logger
}

// NewDriver wires a machine to its collaborators.
func NewDriver(m *Machine, backend Backend, present Presenter, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{machine: m, backend: backend, present: present, logger: logger}
}

// Machine exposes the driven machine for state inspection.
func (d *Driver) Machine() *Machine { return d.machine }

// Dispatch feeds one event and executes every effect it produces,
// recursively feeding backend results back in. It returns once the
// machine has no more work.
func (d *Driver) Dispatch(ctx context.Context, ev Event) {
	effects := d.machine.Apply(ev)
	for _, fx := range effects {
		d.run(ctx, fx)
	}
}

func (d *Driver) run(ctx context.Context, fx Effect) {
	switch fx := fx.(type) {
	case FxFetchCart:
		cart, err := d.backend.GetCart(ctx)
		if err != nil {
			d.logger.Warn("cart fetch failed", zap.Error(err))
			d.Dispatch(ctx, EvLoadFailed{Err: err})
			return
		}
		d.Dispatch(ctx, EvCartLoaded{Cart: cart})
	case FxFetchOrder:
		order, err := d.backend.GetOrder(ctx, fx.OrderNumber)
		if err != nil {
			d.logger.Warn("order fetch failed", zap.String("order", fx.OrderNumber), zap.Error(err))
			d.Dispatch(ctx, EvLoadFailed{Err: err})
			return
		}
		d.Dispatch(ctx, EvOrderLoaded{Order: order})
	case FxFetchProfile:
		// Prefill is best-effort; an anonymous or failed profile fetch
		// must not block checkout.
		user, err := d.backend.Me(ctx)
		if err != nil {
			d.logger.Debug("profile fetch skipped", zap.Error(err))
			return
		}
		d.Dispatch(ctx, EvProfileLoaded{User: user})
	case FxFinalizeOrder:
		order, err := d.backend.Checkout(ctx, fx.Request)
		if err != nil {
			metrics.OrdersFinalized.WithLabelValues(metrics.ResultError).Inc()
			d.logger.Warn("checkout finalize failed", zap.Error(err))
			d.Dispatch(ctx, EvFinalizeFailed{Err: err})
			return
		}
		metrics.OrdersFinalized.WithLabelValues(metrics.ResultOK).Inc()
		d.logger.Info("order finalized", zap.String("order", order.OrderNumber))
		d.Dispatch(ctx, EvOrderFinalized{Order: order})
	case FxRequestSession:
		session, err := d.backend.InitiatePayment(ctx, fx.OrderNumber, string(fx.PaymentType), fx.CustomAmount)
		if err != nil {
			metrics.PaymentSessions.WithLabelValues(metrics.ResultError).Inc()
			d.logger.Warn("payment initiation failed", zap.String("order", fx.OrderNumber), zap.Error(err))
			d.Dispatch(ctx, EvSessionFailed{Err: err})
			return
		}
		metrics.PaymentSessions.WithLabelValues(metrics.ResultOK).Inc()
		d.logger.Info("payment session issued",
			zap.String("order", fx.OrderNumber),
			zap.String("reference", session.Reference))
		d.Dispatch(ctx, EvSessionIssued{Session: session})
	case FxVerifyPayment:
		result, err := d.backend.VerifyPayment(ctx, fx.Reference)
		if err != nil {
			metrics.PaymentVerifications.WithLabelValues("soft_fail").Inc()
			d.logger.Error("payment verification errored, proceeding on gateway result",
				zap.String("reference", fx.Reference), zap.Error(err))
			d.Dispatch(ctx, EvVerifyFailed{Err: err})
			return
		}
		metrics.PaymentVerifications.WithLabelValues(metrics.ResultOK).Inc()
		d.logger.Info("payment verified",
			zap.String("reference", fx.Reference),
			zap.Bool("success", result.Success))
		d.Dispatch(ctx, EvVerified{Result: result})
	case FxOpenPopup:
		d.present.OpenPopup(fx.Setup)
		d.Dispatch(ctx, EvPopupOpened{})
	case FxNavigateSuccess:
		d.present.NavigateToSuccess(fx.OrderNumber, fx.After)
	case FxRedirectToCart:
		d.present.RedirectToCart()
	case FxClearCart:
		d.present.ClearCart()
	case FxShowError:
		d.present.ShowError(fx.Message, fx.Field, fx.Blocking)
	case FxShowNotice:
		d.present.ShowNotice(fx.Message)
	}
}

// Cancel reports a closed popup. Exposed separately so the web layer's
// cancel endpoint reads naturally.
func (d *Driver) Cancel(ctx context.Context) {
	metrics.PopupCancellations.Inc()
	d.Dispatch(ctx, EvGatewayClosed{})
}
