package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

var ipSeq atomic.Uint32

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	ClientIP         string
	LastResponse     *http.Response
	LastResponseBody []byte
}

// NewTestContext creates a new test context. Each scenario gets its own
// client IP so admission counters do not leak between scenarios.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("STOREFRONT_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	seed := uint32(time.Now().UnixNano()>>16) + ipSeq.Add(1)
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		ClientIP: fmt.Sprintf("10.%d.%d.%d", byte(seed>>16), byte(seed>>8), byte(seed)),
	}
}

// Do sends a request from the scenario's client IP and stores the response.
func (tc *TestContext) Do(method, path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Forwarded-For", tc.ClientIP)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.Do(http.MethodGet, path, headers)
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// Getter methods for step package interfaces

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseHeader(name string) string {
	if tc.LastResponse == nil {
		return ""
	}
	return tc.LastResponse.Header.Get(name)
}

func (tc *TestContext) GetLastResponseCookie(name string) *http.Cookie {
	if tc.LastResponse == nil {
		return nil
	}
	for _, c := range tc.LastResponse.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) GetClientIP() string {
	return tc.ClientIP
}
