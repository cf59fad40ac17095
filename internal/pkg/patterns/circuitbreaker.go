// Package patterns holds the resilience wrappers applied to upstream calls.
package patterns

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/microcommerce/orders-service/internal/pkg/metrics"
)

// NewCircuitBreaker creates a circuit breaker that mirrors its state into
// Prometheus. It trips when 60% or more of the last window's requests fail,
// with at least 3 requests observed.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // max requests allowed in half-open state
		Interval:    15 * time.Second, // window to track failures
		Timeout:     30 * time.Second, // time to wait before half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(state)
			slog.Info("circuit breaker state changed", "circuit", cbName, "from", from.String(), "to", to.String())
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return cb
}
