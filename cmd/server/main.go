package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"storefront/internal/edge"
	"storefront/internal/locale"
	"storefront/internal/platform/config"
	"storefront/internal/platform/health"
	"storefront/internal/platform/httpserver"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	rlmetrics "storefront/internal/ratelimit/metrics"
	httptransport "storefront/internal/transport/http"
	dErrors "storefront/pkg/domain-errors"
)

const shutdownTimeout = 10 * time.Second

// main wires the edge gate and keeps the lifecycle small. Admission and
// locale logic live in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront-edge: %v (%s)\n", err, dErrors.CodeOf(err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)
	log.Info("initializing storefront edge",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"locales", cfg.Locale.Supported,
		"default_locale", cfg.Locale.Default,
		"shared_store", cfg.Redis.URL != "",
		"violations_kafka", cfg.Kafka.Brokers != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := metrics.New(health.Version)
	rlMetrics := rlmetrics.New(registry)
	healthHandler := health.New(cfg.Environment)

	infra, err := newInfra(ctx, cfg, log, rlMetrics, healthHandler)
	if err != nil {
		return err
	}

	limiters, err := newLimiters(cfg, infra, log, rlMetrics)
	if err != nil {
		infra.close(context.Background(), log)
		return err
	}

	abort := func(err error) error {
		cleanupCtx := context.WithoutCancel(ctx)
		err = errors.Join(err, limiters.stop(cleanupCtx))
		infra.close(cleanupCtx, log)
		return err
	}

	set, err := locale.NewSet(cfg.Locale.Supported, cfg.Locale.Default)
	if err != nil {
		return abort(err)
	}
	dispatcher, err := edge.New(locale.NewDetector(set, cfg.Locale.CookieName), limiters.byClass(),
		edge.WithAllowedOrigin(cfg.AllowedOrigin),
		edge.WithDisabled(cfg.RateLimit.Disabled),
		edge.WithPublisher(infra.publisher),
		edge.WithLogger(log),
		edge.WithMetrics(edge.NewMetrics(registry)),
	)
	if err != nil {
		return abort(err)
	}

	var downstream http.Handler
	if cfg.UpstreamURL != "" {
		if downstream, err = httptransport.NewUpstream(cfg.UpstreamURL, log); err != nil {
			return abort(err)
		}
	}
	router := httptransport.NewRouter(httptransport.Deps{
		Dispatcher: dispatcher,
		Health:     healthHandler,
		Metrics:    registry.Handler(),
		Downstream: downstream,
		Logger:     log,
	})
	srv := httpserver.New(cfg.Addr, router)

	publishCtx, stopPublishing := context.WithCancel(context.Background())
	published := infra.startPublishing(publishCtx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down storefront edge")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		err = errors.Join(err, limiters.stop(shutdownCtx))

		stopPublishing()
		<-published
		infra.close(shutdownCtx, log)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("storefront edge stopped with error", "error", err)
		return err
	}
	log.Info("server stopped")
	return nil
}

func logClose(log *slog.Logger, what string, err error) {
	if err != nil {
		log.Warn("close failed", "component", what, "error", err)
	}
}
