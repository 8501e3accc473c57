package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/testutil"
)

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func TestLiveness(t *testing.T) {
	rr := testutil.DoRequest(newRouter(New("test")), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.Equal(t, "alive", testutil.UnmarshalResponse[LivenessResponse](t, rr).Status)
}

func TestReadiness(t *testing.T) {
	t.Run("ready when all checks pass", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })

		rr := testutil.DoRequest(newRouter(h), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[ReadinessResponse](t, rr)
		assert.Equal(t, "up", body.Checks["redis"])
	})

	t.Run("not ready when a check fails", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })
		h.RegisterCheck("kafka", func(context.Context) error { return errors.New("no brokers") })

		rr := testutil.DoRequest(newRouter(h), httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalResponse[ReadinessResponse](t, rr)
		require.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "down: no brokers", body.Checks["kafka"])
		assert.Equal(t, "up", body.Checks["redis"])
	})
}

func TestStatus(t *testing.T) {
	rr := testutil.DoRequest(newRouter(New("staging")), httptest.NewRequest(http.MethodGet, "/health", nil))
	body := testutil.UnmarshalResponse[StatusResponse](t, rr)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "staging", body.Environment)
}
