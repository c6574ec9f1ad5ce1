package api

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"londonsimports.org/imports-web/internal/metrics"
)

// newBreaker builds the circuit breaker guarding backend calls. The backend is
// a single upstream, so one breaker covers the whole client; it trips when 60%
// of at least three requests fail within the tracking window.
func newBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(cbName).Set(breakerStateValue(to))
			logger.Info("backend circuit breaker state changed",
				zap.String("breaker", cbName),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// breakerError rewrites gobreaker sentinels into operator-readable messages.
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) {
		return errors.New("backend temporarily unavailable, please try again shortly")
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.New("backend recovering, please try again shortly")
	}
	return err
}
