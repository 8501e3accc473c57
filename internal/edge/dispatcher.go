// Package edge runs once per inbound request, ahead of every page and API
// handler. It rate limits /api traffic, lets static and admin traffic through,
// and redirects unprefixed page paths to their locale-prefixed form.
package edge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/locale"
	"storefront/internal/platform/middleware"
	"storefront/internal/ratelimit/config"
	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/ports"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/middleware/metadata"
	"storefront/pkg/platform/middleware/requesttime"
	"storefront/pkg/platform/privacy"
)

// Limiter admits or rejects one identity for one route class.
type Limiter interface {
	Check(ctx context.Context, identity string) (*models.Result, error)
	Policy() config.Limit
}

type Dispatcher struct {
	detector      *locale.Detector
	limiters      map[models.RouteClass]Limiter
	allowedOrigin string
	disabled      bool
	publisher     ports.ViolationPublisher
	logger        *slog.Logger
	metrics       *Metrics
	tracer        trace.Tracer
}

type Option func(*Dispatcher)

// WithAllowedOrigin sets Access-Control-Allow-Origin; the default is "*".
func WithAllowedOrigin(origin string) Option {
	return func(d *Dispatcher) {
		if origin != "" {
			d.allowedOrigin = origin
		}
	}
}

// WithDisabled skips admission entirely. No rate-limit headers are sent.
func WithDisabled(disabled bool) Option {
	return func(d *Dispatcher) {
		d.disabled = disabled
	}
}

func WithPublisher(p ports.ViolationPublisher) Option {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

var errMissingLimiter = errors.New("edge: a limiter is required for every route class")

// New builds a dispatcher. Both route classes need a limiter unless admission
// is disabled.
func New(detector *locale.Detector, limiters map[models.RouteClass]Limiter, opts ...Option) (*Dispatcher, error) {
	if detector == nil {
		return nil, errors.New("edge: locale detector is required")
	}
	d := &Dispatcher{
		detector:      detector,
		limiters:      limiters,
		allowedOrigin: "*",
		logger:        slog.Default(),
		tracer:        otel.Tracer("storefront/edge"),
	}
	for _, opt := range opts {
		opt(d)
	}
	if !d.disabled {
		for _, class := range []models.RouteClass{models.ClassAuth, models.ClassAPI} {
			if d.limiters[class] == nil {
				return nil, errMissingLimiter
			}
		}
	}
	if d.disabled {
		d.logger.Info("rate limiting disabled")
	}
	return d, nil
}

// Middleware wraps next, which serves every request the edge passes through.
func (d *Dispatcher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := d.tracer.Start(r.Context(), "edge.dispatch",
			trace.WithAttributes(attribute.String("http.path", r.URL.Path)))
		defer span.End()
		r = r.WithContext(ctx)

		SetSecurityHeaders(w.Header(), d.allowedOrigin)
		branch := d.dispatch(w, r, next, span)
		span.SetAttributes(attribute.String("edge.branch", string(branch)))
		d.metrics.observeBranch(branch)
	})
}

func (d *Dispatcher) dispatch(w http.ResponseWriter, r *http.Request, next http.Handler, span trace.Span) Branch {
	path := r.URL.Path
	switch {
	case IsAPI(path):
		d.admit(w, r, next, span)
		return BranchAPI
	case IsStatic(path) || IsAdmin(path):
		next.ServeHTTP(w, r)
		return BranchStatic
	}
	if _, ok := d.detector.Set().FromPath(path); ok {
		next.ServeHTTP(w, r)
		return BranchLocalized
	}
	d.redirect(w, r)
	return BranchRedirect
}

func (d *Dispatcher) admit(w http.ResponseWriter, r *http.Request, next http.Handler, span trace.Span) {
	if d.disabled {
		next.ServeHTTP(w, r)
		return
	}
	ctx := r.Context()
	class := ClassFor(r.URL.Path)
	limiter := d.limiters[class]
	identity := metadata.IdentityFromContext(ctx, r)
	span.SetAttributes(attribute.String("ratelimit.class", class.String()))

	result, err := limiter.Check(ctx, identity)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "admission check failed")
		d.metrics.observeLimiterError(class.String())
		d.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
			"error", err,
			"class", class,
			"ip_prefix", privacy.AnonymizeIP(identity),
			"request_id", middleware.GetRequestID(ctx),
		)
		next.ServeHTTP(w, r)
		return
	}

	span.SetAttributes(
		attribute.Bool("ratelimit.allowed", result.Allowed),
		attribute.Int("ratelimit.remaining", result.Remaining),
	)
	SetRateLimitHeaders(w.Header(), result)
	if result.Allowed {
		next.ServeHTTP(w, r)
		return
	}

	d.publishViolation(ctx, r, class, identity, limiter.Policy())
	l, _ := d.detector.FromRequest(r)
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:   models.ExceededError,
		Message: RetryMessage(l),
	})
}

func (d *Dispatcher) publishViolation(ctx context.Context, r *http.Request, class models.RouteClass, identity string, policy config.Limit) {
	if d.publisher == nil {
		return
	}
	v, err := models.NewViolation(class, privacy.AnonymizeIP(identity), r.Method, r.URL.Path,
		policy.RequestsPerWindow, policy.Window, requesttime.Now(ctx))
	if err != nil {
		d.logger.WarnContext(ctx, "skipping violation event", "error", err)
		return
	}
	v.RequestID = middleware.GetRequestID(ctx)
	d.publisher.Publish(ctx, v)
}

// redirect sends the client to /{locale}{path}, query intact, and persists
// the choice in the locale cookie.
func (d *Dispatcher) redirect(w http.ResponseWriter, r *http.Request) {
	l, source := d.detector.FromRequest(r)
	d.metrics.observeRedirect(l, source)

	target := "/" + l.String() + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.SetCookie(w, d.detector.Cookie(l))
	w.Header().Set("Location", target)
	w.WriteHeader(http.StatusTemporaryRedirect)
}
