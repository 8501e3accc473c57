package httptransport

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"storefront/internal/edge"
	dErrors "storefront/pkg/domain-errors"
	pkghttputil "storefront/pkg/platform/httputil"
)

// NewUpstream proxies passed-through requests to the storefront renderer.
// The upstream's security and CORS headers are dropped; the dispatcher has
// already set the edge's values on the response.
func NewUpstream(rawURL string, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "upstream url must be absolute")
	}
	if logger == nil {
		logger = slog.Default()
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ModifyResponse = func(resp *http.Response) error {
		edge.DropSecurityHeaders(resp.Header)
		return nil
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.ErrorContext(r.Context(), "upstream request failed", "error", err, "path", r.URL.Path)
		pkghttputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "storefront unavailable"))
	}
	return proxy, nil
}

// NotFound answers when no upstream is configured.
func NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		pkghttputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no storefront upstream configured"))
	})
}
