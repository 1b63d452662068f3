// Package breaker wraps a remote provider in a circuit breaker so that a
// failing backend is skipped quickly instead of timing out on every refresh.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/metrics"
)

// Provider is the wrapped remote data provider.
type Provider interface {
	Ping(ctx context.Context) error
	FetchCollection(ctx context.Context, name catalog.CollectionName) ([]json.RawMessage, error)
	FetchScoreTable(ctx context.Context) ([]catalog.ScoreRow, error)
	IncrementVersion(ctx context.Context, name catalog.CollectionName) error
}

// Config configures the breaker.
type Config struct {
	Name string
	// MaxRequests is the number of requests allowed in half-open state.
	MaxRequests uint32
	// Interval is the cyclic reset period for counts in closed state.
	Interval time.Duration
	// Timeout is the open-state duration before moving to half-open.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Name:             "remote",
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker decorates a Provider. It satisfies the same contract.
type Breaker struct {
	inner  Provider
	name   string
	cb     *gobreaker.CircuitBreaker[any]
	logger *zap.Logger
}

// New wraps inner. Zero config fields take DefaultConfig values.
func New(inner Provider, cfg Config, logger *zap.Logger) *Breaker {
	def := DefaultConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}

	b := &Breaker{inner: inner, name: cfg.Name, logger: logger}
	b.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(stateValue(gobreaker.StateClosed))
	return b
}

// State returns the current breaker state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Ping checks reachability through the breaker.
func (b *Breaker) Ping(ctx context.Context) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.Ping(ctx)
	})
	return err
}

// FetchCollection fetches name through the breaker.
func (b *Breaker) FetchCollection(ctx context.Context, name catalog.CollectionName) ([]json.RawMessage, error) {
	v, err := b.execute(func() (any, error) {
		return b.inner.FetchCollection(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	rows, _ := v.([]json.RawMessage)
	return rows, nil
}

// FetchScoreTable fetches the score table through the breaker.
func (b *Breaker) FetchScoreTable(ctx context.Context) ([]catalog.ScoreRow, error) {
	v, err := b.execute(func() (any, error) {
		return b.inner.FetchScoreTable(ctx)
	})
	if err != nil {
		return nil, err
	}
	rows, _ := v.([]catalog.ScoreRow)
	return rows, nil
}

// IncrementVersion bumps the version of name through the breaker.
func (b *Breaker) IncrementVersion(ctx context.Context, name catalog.CollectionName) error {
	_, err := b.execute(func() (any, error) {
		return nil, b.inner.IncrementVersion(ctx, name)
	})
	return err
}

func (b *Breaker) execute(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
		return v, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: circuit %s: %w", domain.ErrRemoteUnavailable, b.name, err)
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
}

// isSuccessful keeps caller-side errors from tripping the breaker.
func isSuccessful(err error) bool {
	return err == nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrUnknownCollection)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
