// Package httptransport assembles the public HTTP surface: operational
// endpoints plus the edge dispatcher in front of the storefront.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/edge"
	"storefront/internal/platform/health"
	"storefront/internal/platform/middleware"
	"storefront/pkg/platform/middleware/metadata"
	"storefront/pkg/platform/middleware/requesttime"
)

// Deps are the handlers the router mounts. Metrics and Downstream are optional.
type Deps struct {
	Dispatcher *edge.Dispatcher
	Health     *health.Handler
	Metrics    http.Handler
	Downstream http.Handler
	Logger     *slog.Logger
}

// NewRouter mounts health and metrics outside the dispatcher so probes are
// never rate limited or locale-redirected. Everything else goes through it.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	downstream := deps.Downstream
	if downstream == nil {
		downstream = NotFound()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(logger))

	if deps.Health != nil {
		deps.Health.Register(r)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	r.Handle("/*", deps.Dispatcher.Middleware(downstream))
	return r
}
