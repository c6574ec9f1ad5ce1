// Package metrics exposes the Prometheus instruments for the checkout flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersFinalized counts checkout finalize attempts by result.
	OrdersFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imports_web_orders_finalized_total",
			Help: "Checkout finalize calls by result",
		},
		[]string{"result"},
	)

	// PaymentSessions counts payment session requests by result.
	PaymentSessions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imports_web_payment_sessions_total",
			Help: "Payment session initiations by result",
		},
		[]string{"result"},
	)

	// PaymentVerifications counts server-side verifications by result.
	// "soft_fail" records the deliberate verify-error-but-proceed path.
	PaymentVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imports_web_payment_verifications_total",
			Help: "Payment verification calls by result",
		},
		[]string{"result"},
	)

	// PopupCancellations counts user-cancelled payment popups.
	PopupCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "imports_web_popup_cancellations_total",
			Help: "Payment popups closed by the user without paying",
		},
	)

	// BreakerState tracks backend circuit breaker state
	// (0=closed, 1=open, 2=half-open).
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "imports_web_backend_breaker_state",
			Help: "Backend circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// RequestDuration observes page/fragment handler latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imports_web_request_duration_seconds",
			Help:    "HTTP request duration by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)
