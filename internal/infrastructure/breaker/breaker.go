// Package breaker builds the gobreaker circuit breakers used around
// generation, both in the client and in front of the server route.
package breaker

import (
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"hackverse-mindmap/internal/config"
	"hackverse-mindmap/internal/infrastructure/observability"
)

// ErrUnavailable marks a call rejected because the breaker is open or
// saturated while half-open.
var ErrUnavailable = errors.New("service temporarily unavailable")

// Breaker runs calls through a circuit breaker. A disabled breaker runs
// them directly.
type Breaker struct {
	cb *gobreaker.CircuitBreaker
}

// New creates a breaker. Calls count as failures when they return an error
// for which ignore reports false; ignore may be nil.
func New(name string, cfg config.CircuitBreaker, logger *zap.Logger, metrics *observability.Collector, ignore func(error) bool) *Breaker {
	if !cfg.Enabled {
		return &Breaker{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			metrics.SetBreakerState(name, int(to))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || (ignore != nil && ignore(err))
		},
	}
	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn. When the breaker rejects the call the returned error
// wraps ErrUnavailable.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	if b == nil || b.cb == nil {
		return fn()
	}
	out, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return out, err
}

// State returns the breaker state, closed when disabled.
func (b *Breaker) State() gobreaker.State {
	if b == nil || b.cb == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}
