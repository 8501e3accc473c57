package sweep

import (
	"context"
	"log/slog"
	"time"

	"storefront/internal/ratelimit/metrics"
	"storefront/internal/ratelimit/models"
)

// Result summarises one sweep run.
type Result struct {
	Removed   int
	Remaining int
	Duration  time.Duration
}

// Target is swept on every tick. Len may return -1 when unknown.
type Target interface {
	Sweep(ctx context.Context) (removed int, err error)
	Len() int
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithInterval(interval time.Duration) Option {
	return func(w *Worker) {
		if interval > 0 {
			w.interval = interval
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// Worker periodically deletes expired window entries of one limiter.
type Worker struct {
	target   Target
	class    models.RouteClass
	logger   *slog.Logger
	interval time.Duration
	metrics  *metrics.Metrics
}

func New(target Target, class models.RouteClass, opts ...Option) *Worker {
	w := &Worker{
		target:   target,
		class:    class,
		logger:   slog.Default(),
		interval: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start sweeps on every tick until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := w.RunOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				w.logger.Error("ratelimit_sweep_failed",
					"class", w.class,
					"error", err,
				)
				continue
			}
			w.logger.Debug("ratelimit_sweep_completed",
				"class", w.class,
				"removed", res.Removed,
				"remaining", res.Remaining,
				"duration_ms", res.Duration.Milliseconds(),
			)

		case <-ctx.Done():
			w.logger.Debug("ratelimit sweep worker stopping", "class", w.class, "reason", ctx.Err())
			return ctx.Err()
		}
	}
}

// RunOnce executes a single sweep and records its metrics.
func (w *Worker) RunOnce(ctx context.Context) (*Result, error) {
	start := time.Now()
	removed, err := w.target.Sweep(ctx)
	duration := time.Since(start)
	if err != nil {
		w.metrics.ObserveSweep(w.class, 0, -1, duration.Seconds(), err)
		return nil, err
	}

	res := &Result{Removed: removed, Remaining: w.target.Len(), Duration: duration}
	w.metrics.ObserveSweep(w.class, res.Removed, res.Remaining, duration.Seconds(), nil)
	return res, nil
}
