// Package testutil provides common helpers for handler and integration tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewRequest creates a request with the given headers set.
func NewRequest(t *testing.T, method, target string, headers map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

// NewClientRequest creates a GET request attributed to clientIP via X-Forwarded-For.
func NewClientRequest(t *testing.T, target, clientIP string) *http.Request {
	t.Helper()
	return NewRequest(t, http.MethodGet, target, map[string]string{"X-Forwarded-For": clientIP})
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// UnmarshalResponse unmarshals the response body into T.
func UnmarshalResponse[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	var result T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result), "failed to unmarshal response")
	return &result
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertHeader asserts a response header value.
func AssertHeader(t *testing.T, rr *httptest.ResponseRecorder, name, expected string) {
	t.Helper()
	assert.Equal(t, expected, rr.Header().Get(name), "unexpected value for header %q", name)
}

// AssertSecurityHeaders asserts the headers every edge response carries.
func AssertSecurityHeaders(t *testing.T, rr *httptest.ResponseRecorder, allowedOrigin string) {
	t.Helper()
	h := rr.Header()
	assert.Equal(t, []string{"nosniff"}, h.Values("X-Content-Type-Options"))
	assert.Equal(t, []string{"DENY"}, h.Values("X-Frame-Options"))
	assert.Equal(t, []string{allowedOrigin}, h.Values("Access-Control-Allow-Origin"))
}
