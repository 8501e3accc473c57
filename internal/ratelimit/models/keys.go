package models

import "net/url"

// SanitizeKeySegment query-escapes a rate limit key segment. ':' and '%'
// are both escaped, so distinct identities never share a key and an identity
// cannot address a neighbouring namespace.
func SanitizeKeySegment(s string) string {
	return url.QueryEscape(s)
}

// Key namespaces identity under the route class: "auth:203.0.113.9".
func (c RouteClass) Key(identity string) string {
	return string(c) + ":" + SanitizeKeySegment(identity)
}
