// Package resilient guards a shared window store with a circuit breaker and a
// process-local fallback.
package resilient

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/ports"
	"storefront/pkg/platform/circuit"
)

// Store forwards to primary while it is healthy. After the breaker opens,
// failed primary calls are answered by fallback and flagged Degraded. Primary
// successes close the breaker again.
type Store struct {
	primary  ports.Store
	fallback ports.Store
	breaker  *circuit.Breaker
	logger   *slog.Logger
	onChange func(name string, state circuit.State)
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithBreaker replaces the default breaker (5 failures to open, 3 successes to close).
func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Store) {
		if b != nil {
			s.breaker = b
		}
	}
}

// WithStateObserver is called on every breaker transition.
func WithStateObserver(fn func(name string, state circuit.State)) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

func New(primary, fallback ports.Store, opts ...Option) *Store {
	s := &Store{
		primary:  primary,
		fallback: fallback,
		breaker:  circuit.New("ratelimit-store"),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Store) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (*models.Result, error) {
	result, err := s.primary.Allow(ctx, key, limit, window, now)
	if err == nil {
		_, change := s.breaker.RecordSuccess()
		if change.Closed {
			s.logger.InfoContext(ctx, "rate limit store recovered", "breaker", s.breaker.Name())
			s.notify(circuit.StateClosed)
		}
		return result, nil
	}

	// Cancelled requests say nothing about store health.
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "rate limit store degraded, using local fallback",
			"breaker", s.breaker.Name(),
			"error", err,
		)
		s.notify(circuit.StateOpen)
	}
	if !useFallback {
		return nil, err
	}

	result, fbErr := s.fallback.Allow(ctx, key, limit, window, now)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	result.Degraded = true
	return result, nil
}

// Sweep sweeps both stores; the fallback holds real entries while degraded.
func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	fromPrimary, pErr := s.primary.Sweep(ctx, now)
	fromFallback, fErr := s.fallback.Sweep(ctx, now)
	return fromPrimary + fromFallback, errors.Join(pErr, fErr)
}

func (s *Store) Clear(ctx context.Context) error {
	return errors.Join(s.primary.Clear(ctx), s.fallback.Clear(ctx))
}

// Len reports the primary count when it is known, else the fallback count.
func (s *Store) Len() int {
	if n := s.primary.Len(); n >= 0 {
		return n
	}
	return s.fallback.Len()
}

// Degraded reports whether the breaker is open.
func (s *Store) Degraded() bool {
	return s.breaker.IsOpen()
}

func (s *Store) notify(state circuit.State) {
	if s.onChange != nil {
		s.onChange(s.breaker.Name(), state)
	}
}
