// Package locale resolves which storefront locale a request is served under.
//
// Resolution order is a valid locale cookie, then the Accept-Language header
// by position (weights are ignored), then the configured default. Detection
// is total: every input yields a member of the configured set.
package locale

import (
	"fmt"
	"net/http"
	"strings"

	dErrors "storefront/pkg/domain-errors"
)

// Locale is a member of the configured locale set.
type Locale string

func (l Locale) String() string {
	return string(l)
}

// Source records which signal produced a resolved locale.
type Source string

const (
	SourceCookie  Source = "cookie"
	SourceHeader  Source = "header"
	SourceDefault Source = "default"
)

// CookieMaxAge is one year in seconds.
const CookieMaxAge = 31_536_000

// Set is the closed, ordered set of supported locales plus its default.
type Set struct {
	members []Locale
	index   map[string]Locale
	def     Locale
}

// NewSet validates that codes are non-empty and unique and that def is a member.
func NewSet(codes []string, def string) (*Set, error) {
	if len(codes) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "locale set cannot be empty")
	}
	s := &Set{index: make(map[string]Locale, len(codes))}
	for _, code := range codes {
		if code == "" || strings.ContainsAny(code, "/;, ") {
			return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid locale code %q", code))
		}
		if _, dup := s.index[code]; dup {
			return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("duplicate locale %q", code))
		}
		l := Locale(code)
		s.index[code] = l
		s.members = append(s.members, l)
	}
	d, ok := s.index[def]
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("default locale %q is not in the set", def))
	}
	s.def = d
	return s, nil
}

// Lookup returns the member equal to code.
func (s *Set) Lookup(code string) (Locale, bool) {
	l, ok := s.index[code]
	return l, ok
}

func (s *Set) Default() Locale {
	return s.def
}

func (s *Set) Members() []Locale {
	return append([]Locale(nil), s.members...)
}

// FromPath reports the locale named by the first path segment, if any:
// "/vi/accounts" and "/vi" yield "vi"; "/video" does not.
func (s *Set) FromPath(path string) (Locale, bool) {
	segment := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(segment, '/'); i >= 0 {
		segment = segment[:i]
	}
	return s.Lookup(segment)
}

// Detector resolves a locale from cookies and the Accept-Language header.
type Detector struct {
	set        *Set
	cookieName string
}

func NewDetector(set *Set, cookieName string) *Detector {
	return &Detector{set: set, cookieName: cookieName}
}

func (d *Detector) Set() *Set {
	return d.set
}

func (d *Detector) CookieName() string {
	return d.cookieName
}

// Detect returns the effective locale; it never fails.
func (d *Detector) Detect(cookies []*http.Cookie, acceptLanguage string) Locale {
	l, _ := d.Resolve(cookies, acceptLanguage)
	return l
}

// Resolve is Detect that also reports which signal decided.
func (d *Detector) Resolve(cookies []*http.Cookie, acceptLanguage string) (Locale, Source) {
	if l, ok := d.fromCookies(cookies); ok {
		return l, SourceCookie
	}
	if l, ok := d.fromHeader(acceptLanguage); ok {
		return l, SourceHeader
	}
	return d.set.Default(), SourceDefault
}

// FromRequest resolves the locale of r.
func (d *Detector) FromRequest(r *http.Request) (Locale, Source) {
	return d.Resolve(r.Cookies(), r.Header.Get("Accept-Language"))
}

// Cookie builds the cookie that persists l for a year.
func (d *Detector) Cookie(l Locale) *http.Cookie {
	return &http.Cookie{
		Name:     d.cookieName,
		Value:    l.String(),
		Path:     "/",
		MaxAge:   CookieMaxAge,
		SameSite: http.SameSiteLaxMode,
	}
}

// A cookie outside the set (stale config, tampering) counts as absent.
func (d *Detector) fromCookies(cookies []*http.Cookie) (Locale, bool) {
	for _, c := range cookies {
		if c == nil || c.Name != d.cookieName {
			continue
		}
		if l, ok := d.set.Lookup(c.Value); ok {
			return l, true
		}
	}
	return "", false
}

// fromHeader scans "vi;q=0.9,en-US;q=0.5" left to right. Each candidate is
// tried as-is, then with everything after the first '-' stripped. Tags are
// case-insensitive, so candidates are lowercased first.
func (d *Detector) fromHeader(header string) (Locale, bool) {
	for part := range strings.SplitSeq(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if l, ok := d.set.Lookup(tag); ok {
			return l, true
		}
		if base, _, found := strings.Cut(tag, "-"); found {
			if l, ok := d.set.Lookup(base); ok {
				return l, true
			}
		}
	}
	return "", false
}
