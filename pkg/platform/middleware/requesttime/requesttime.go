// Package requesttime pins a single "now" per HTTP request so that limiter
// decisions, response headers and access logs agree on the same instant.
package requesttime

import (
	"context"
	"net/http"
	"time"
)

type contextKeyRequestTime struct{}

// Middleware captures time.Now at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return WithClock(time.Now)(next)
}

// WithClock returns middleware that captures the request time from clock.
func WithClock(clock func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithTime(r.Context(), clock())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Now retrieves the request-scoped time, falling back to time.Now outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := From(ctx); ok {
		return t
	}
	return time.Now()
}

// From reports the request-scoped time if one was set.
func From(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time)
	return t, ok
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

