package metadata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expected   string
	}{
		{
			name:     "first forwarded entry wins",
			headers:  map[string]string{"X-Forwarded-For": " 203.0.113.9 , 10.0.0.1, 10.0.0.2"},
			expected: "203.0.113.9",
		},
		{
			name:     "single forwarded entry",
			headers:  map[string]string{"X-Forwarded-For": "198.51.100.4"},
			expected: "198.51.100.4",
		},
		{
			name:     "forwarded beats real ip",
			headers:  map[string]string{"X-Forwarded-For": "198.51.100.4", "X-Real-IP": "192.0.2.1"},
			expected: "198.51.100.4",
		},
		{
			name:     "real ip when no forwarded header",
			headers:  map[string]string{"X-Real-IP": " 192.0.2.1 "},
			expected: "192.0.2.1",
		},
		{
			name:     "blank forwarded entry falls through",
			headers:  map[string]string{"X-Forwarded-For": " , 10.0.0.1", "X-Real-IP": "192.0.2.1"},
			expected: "192.0.2.1",
		},
		{
			name:       "socket address is ignored",
			remoteAddr: "192.0.2.77:5555",
			expected:   UnknownClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, ClientIPFromRequest(req))
		})
	}
}

func TestClientMetadataMiddleware(t *testing.T) {
	var gotIP, gotUA string
	handler := ClientMetadata(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = GetClientIP(r.Context())
		gotUA = GetUserAgent(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "192.0.2.1")
	req.Header.Set("User-Agent", "curl/8.0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "192.0.2.1", gotIP)
	assert.Equal(t, "curl/8.0", gotUA)
}

func TestIdentityFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "192.0.2.1")

	assert.Equal(t, "192.0.2.1", IdentityFromContext(context.Background(), req))

	ctx := WithClientMetadata(context.Background(), "203.0.113.1", "")
	assert.Equal(t, "203.0.113.1", IdentityFromContext(ctx, req))
}
