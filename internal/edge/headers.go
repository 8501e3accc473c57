package edge

import (
	"net/http"
	"strconv"

	"storefront/internal/ratelimit/models"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRateLimitStatus    = "X-RateLimit-Status"
	HeaderRetryAfter         = "Retry-After"
)

const (
	headerContentTypeOptions = "X-Content-Type-Options"
	headerFrameOptions       = "X-Frame-Options"
	headerAllowOrigin        = "Access-Control-Allow-Origin"
)

// SetSecurityHeaders is applied on every branch, including 429 and redirects.
func SetSecurityHeaders(h http.Header, allowedOrigin string) {
	h.Set(headerContentTypeOptions, "nosniff")
	h.Set(headerFrameOptions, "DENY")
	h.Set(headerAllowOrigin, allowedOrigin)
}

// DropSecurityHeaders removes a downstream's own copies of the headers the
// edge owns. A proxy appends downstream headers to the ones already set.
func DropSecurityHeaders(h http.Header) {
	h.Del(headerContentTypeOptions)
	h.Del(headerFrameOptions)
	h.Del(headerAllowOrigin)
}

// SetRateLimitHeaders reports the decision. Reset is the window end in Unix seconds.
func SetRateLimitHeaders(h http.Header, result *models.Result) {
	if result == nil {
		return
	}
	h.Set(HeaderRateLimitLimit, strconv.Itoa(result.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(result.Remaining))
	h.Set(HeaderRateLimitReset, strconv.FormatInt(result.ResetAt.Unix(), 10))
	if result.Degraded {
		h.Set(HeaderRateLimitStatus, "degraded")
	}
	if !result.Allowed {
		h.Set(HeaderRetryAfter, strconv.Itoa(result.RetryAfter))
	}
}
