// Package metadata derives client identity from proxy headers and carries it
// through the request context.
package metadata

import (
	"context"
	"net/http"
	"strings"
)

// UnknownClient is the identity used when no proxy header names the client.
const UnknownClient = "unknown"

type contextKeyClientIP struct{}
type contextKeyUserAgent struct{}

// ClientMetadata stores the client identity and User-Agent in the request
// context. Apply it before anything that logs or limits per client.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIP returns the identity stored by ClientMetadata, or "" if absent.
func GetClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return ip
	}
	return ""
}

func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client identity and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, clientIP)
	ctx = context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
	return ctx
}

// ClientIPFromRequest returns the first X-Forwarded-For entry, then X-Real-IP,
// then UnknownClient. The socket address is never consulted: behind the CDN it
// is always the proxy, and all traffic would share one bucket.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return UnknownClient
}

// IdentityFromContext prefers the identity captured by ClientMetadata and
// falls back to reading the headers directly.
func IdentityFromContext(ctx context.Context, r *http.Request) string {
	if ip := GetClientIP(ctx); ip != "" {
		return ip
	}
	return ClientIPFromRequest(r)
}
