package main

import (
	"context"
	"errors"
	"log/slog"

	"storefront/internal/edge"
	"storefront/internal/platform/config"
	"storefront/internal/platform/health"
	"storefront/internal/platform/kafka/producer"
	"storefront/internal/platform/redis"
	rlconfig "storefront/internal/ratelimit/config"
	"storefront/internal/ratelimit/limiter"
	rlmetrics "storefront/internal/ratelimit/metrics"
	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/observability"
	"storefront/internal/ratelimit/ports"
	"storefront/internal/ratelimit/store/resilient"
	"storefront/internal/ratelimit/store/window"
	"storefront/pkg/platform/circuit"
)

// infra holds the optional shared dependencies. A nil field means the
// feature is not configured.
type infra struct {
	redis     *redis.Client
	producer  *producer.Producer
	kafka     *observability.KafkaPublisher
	publisher ports.ViolationPublisher
}

func newInfra(ctx context.Context, cfg config.Server, log *slog.Logger, m *rlmetrics.Metrics, h *health.Handler) (*infra, error) {
	in := &infra{}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		in.redis = client
		if err := window.NewRedisStore(client).Preload(ctx); err != nil {
			log.Warn("fixed window script not preloaded", "error", err)
		}
		h.RegisterCheck("redis", client.Health)
		log.Info("shared window store enabled")
	}

	publishers := observability.Fanout{observability.NewLogPublisher(log)}
	if cfg.Kafka.Brokers != "" {
		prod, err := producer.New(producer.DefaultConfig(cfg.Kafka.Brokers), log)
		if err != nil {
			in.close(context.Background(), log)
			return nil, err
		}
		in.producer = prod
		in.kafka = observability.NewKafkaPublisher(prod, cfg.Kafka.ViolationsTopic,
			observability.WithKafkaLogger(log),
			observability.WithKafkaMetrics(m),
		)
		publishers = append(publishers, in.kafka)
		h.RegisterCheck("kafka", prod.Ping)
		log.Info("violation events enabled", "topic", cfg.Kafka.ViolationsTopic)
	}
	in.publisher = publishers
	return in, nil
}

// startPublishing runs the Kafka drain loop; the returned channel closes once
// the final flush is handed to the producer.
func (in *infra) startPublishing(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if in.kafka == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		_ = in.kafka.Run(ctx)
	}()
	return done
}

func (in *infra) close(ctx context.Context, log *slog.Logger) {
	if in.producer != nil {
		logClose(log, "kafka", in.producer.Close(ctx))
	}
	if in.redis != nil {
		logClose(log, "redis", in.redis.Close())
	}
}

// store returns the window store for class: memory only, or Redis behind a
// breaker with a memory fallback.
func (in *infra) store(class models.RouteClass, log *slog.Logger, m *rlmetrics.Metrics) ports.Store {
	if in.redis == nil {
		return window.NewMemoryStore()
	}
	return resilient.New(window.NewRedisStore(in.redis), window.NewMemoryStore(),
		resilient.WithBreaker(circuit.New("redis_"+class.String())),
		resilient.WithLogger(log),
		resilient.WithStateObserver(m.ObserveBreaker),
	)
}

type limiterSet []*limiter.Limiter

func newLimiters(cfg config.Server, in *infra, log *slog.Logger, m *rlmetrics.Metrics) (limiterSet, error) {
	rl := rateLimitConfig(cfg.RateLimit)
	if err := rl.Validate(); err != nil {
		return nil, err
	}

	var set limiterSet
	for _, class := range []models.RouteClass{models.ClassAuth, models.ClassAPI} {
		limit, err := rl.LimitFor(class)
		if err != nil {
			return nil, errors.Join(err, set.stop(context.Background()))
		}
		l, err := limiter.New(class, limit,
			limiter.WithStore(in.store(class, log, m)),
			limiter.WithLogger(log),
			limiter.WithMetrics(m),
			limiter.WithSweepInterval(rl.SweepInterval),
		)
		if err != nil {
			return nil, errors.Join(err, set.stop(context.Background()))
		}
		set = append(set, l)
	}
	return set, nil
}

func rateLimitConfig(c config.RateLimitConfig) *rlconfig.Config {
	return &rlconfig.Config{
		Limits: map[models.RouteClass]rlconfig.Limit{
			models.ClassAuth: {RequestsPerWindow: c.Auth.Limit, Window: c.Auth.Window},
			models.ClassAPI:  {RequestsPerWindow: c.API.Limit, Window: c.API.Window},
		},
		SweepInterval: c.SweepInterval,
		Disabled:      c.Disabled,
	}
}

func (s limiterSet) byClass() map[models.RouteClass]edge.Limiter {
	out := make(map[models.RouteClass]edge.Limiter, len(s))
	for _, l := range s {
		out[l.Class()] = l
	}
	return out
}

func (s limiterSet) stop(ctx context.Context) error {
	var errs []error
	for _, l := range s {
		errs = append(errs, l.Stop(ctx))
	}
	return errors.Join(errs...)
}
