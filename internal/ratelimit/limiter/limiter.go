// Package limiter enforces one fixed-window admission policy for one route
// class. Each Limiter owns its store and the sweep that keeps it bounded.
package limiter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"storefront/internal/ratelimit/config"
	"storefront/internal/ratelimit/metrics"
	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/ports"
	"storefront/internal/ratelimit/store/window"
	"storefront/internal/ratelimit/workers/sweep"
	"storefront/pkg/platform/middleware/metadata"
	"storefront/pkg/platform/sentinel"
)

// Limiter checks identities of one route class against its policy.
type Limiter struct {
	class         models.RouteClass
	limit         config.Limit
	store         ports.Store
	clock         func() time.Time
	logger        *slog.Logger
	metrics       *metrics.Metrics
	sweepInterval time.Duration
	manualSweep   bool

	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

type Option func(*Limiter)

// WithStore replaces the default in-memory store.
func WithStore(store ports.Store) Option {
	return func(l *Limiter) {
		if store != nil {
			l.store = store
		}
	}
}

// WithClock injects the time source used for every window decision.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) {
		if clock != nil {
			l.clock = clock
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithSweepInterval overrides the 5 minute default.
func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.sweepInterval = d
		}
	}
}

// WithManualSweep skips the background sweep; the caller drives Sweep.
func WithManualSweep() Option {
	return func(l *Limiter) {
		l.manualSweep = true
	}
}

// New creates a limiter and starts its background sweep.
func New(class models.RouteClass, limit config.Limit, opts ...Option) (*Limiter, error) {
	if !class.IsValid() {
		return nil, fmt.Errorf("new limiter: invalid route class %q", class)
	}
	if err := limit.Validate(); err != nil {
		return nil, fmt.Errorf("new limiter %s: %w", class, err)
	}

	l := &Limiter{
		class:         class,
		limit:         limit,
		store:         window.NewMemoryStore(),
		clock:         time.Now,
		logger:        slog.Default(),
		sweepInterval: 5 * time.Minute,
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	if l.manualSweep {
		close(l.done)
		return l, nil
	}

	worker := sweep.New(l, class,
		sweep.WithInterval(l.sweepInterval),
		sweep.WithLogger(l.logger),
		sweep.WithMetrics(l.metrics),
	)
	go func() {
		defer close(l.done)
		_ = worker.Start(ctx)
	}()
	return l, nil
}

// Check admits or rejects one request from identity. An empty identity is
// treated as the shared "unknown" client.
func (l *Limiter) Check(ctx context.Context, identity string) (*models.Result, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stopped {
		return nil, fmt.Errorf("check %s limit: %w", l.class, sentinel.ErrClosed)
	}

	if identity == "" {
		identity = metadata.UnknownClient
	}
	result, err := l.store.Allow(ctx, l.class.Key(identity), l.limit.RequestsPerWindow, l.limit.Window, l.clock())
	l.metrics.ObserveDecision(l.class, result, err)
	if err != nil {
		return nil, fmt.Errorf("check %s limit: %w", l.class, err)
	}
	return result, nil
}

// Sweep removes entries whose window closed at the current clock time.
func (l *Limiter) Sweep(ctx context.Context) (int, error) {
	return l.store.Sweep(ctx, l.clock())
}

// Len reports live store entries, or -1 for a shared store.
func (l *Limiter) Len() int {
	return l.store.Len()
}

// Stop cancels the sweep, waits for it to exit (bounded by ctx) and clears the
// store. It is safe to call more than once; later Checks return
// sentinel.ErrClosed.
func (l *Limiter) Stop(ctx context.Context) error {
	var err error
	l.stopOnce.Do(func() {
		l.cancel()
		select {
		case <-l.done:
		case <-ctx.Done():
			err = ctx.Err()
		}

		l.mu.Lock()
		defer l.mu.Unlock()
		l.stopped = true
		err = errors.Join(err, l.store.Clear(context.WithoutCancel(ctx)))
	})
	return err
}

func (l *Limiter) Class() models.RouteClass {
	return l.class
}

func (l *Limiter) Policy() config.Limit {
	return l.limit
}
