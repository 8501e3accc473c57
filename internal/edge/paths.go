package edge

import (
	"strings"

	"storefront/internal/ratelimit/models"
)

// Branch names the dispatcher branch a request took.
type Branch string

const (
	BranchAPI       Branch = "api"
	BranchStatic    Branch = "static"
	BranchLocalized Branch = "localized"
	BranchRedirect  Branch = "redirect"
)

const (
	apiPrefix     = "/api"
	authAPIPrefix = "/api/auth/"
	adminPrefix   = "/admin"
)

var internalPrefixes = []string{"/_next/", "/_vercel/", "/static/"}

// IsAPI matches "/api" and anything below it, but not "/apiary".
func IsAPI(path string) bool {
	return hasSegmentPrefix(path, apiPrefix)
}

// ClassFor maps an API path to its route class.
func ClassFor(path string) models.RouteClass {
	if strings.HasPrefix(path, authAPIPrefix) {
		return models.ClassAuth
	}
	return models.ClassAPI
}

// IsStatic matches framework internals, well-known static files and any path
// whose last segment carries a file extension.
func IsStatic(path string) bool {
	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if path == "/favicon.ico" {
		return true
	}
	last := path[strings.LastIndexByte(path, '/')+1:]
	return strings.Contains(last, ".")
}

func IsAdmin(path string) bool {
	return hasSegmentPrefix(path, adminPrefix)
}

func hasSegmentPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/'
}
