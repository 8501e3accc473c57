package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "storefront/pkg/domain-errors"
)

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromLookup(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, []string{"en", "vi"}, cfg.Locale.Supported)
	assert.Equal(t, "vi", cfg.Locale.Default)
	assert.Equal(t, "NEXT_LOCALE", cfg.Locale.CookieName)
	assert.Equal(t, PolicyConfig{Limit: 5, Window: 15 * time.Minute}, cfg.RateLimit.Auth)
	assert.Equal(t, PolicyConfig{Limit: 100, Window: time.Minute}, cfg.RateLimit.API)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.SweepInterval)
	assert.False(t, cfg.RateLimit.Disabled)
	assert.Empty(t, cfg.Redis.URL)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := fromLookup(envOf(map[string]string{
		"STOREFRONT_ADDR":       ":9090",
		"LOCALES":               " en, vi ,fr,",
		"DEFAULT_LOCALE":        "en",
		"ALLOWED_ORIGIN":        "https://shop.example",
		"RATELIMIT_AUTH_LIMIT":  "10",
		"RATELIMIT_AUTH_WINDOW": "30m",
		"RATELIMIT_DISABLED":    "true",
		"REDIS_URL":             "redis://localhost:6379/0",
		"KAFKA_BROKERS":         "localhost:9092",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"en", "vi", "fr"}, cfg.Locale.Supported)
	assert.Equal(t, "en", cfg.Locale.Default)
	assert.Equal(t, "https://shop.example", cfg.AllowedOrigin)
	assert.Equal(t, PolicyConfig{Limit: 10, Window: 30 * time.Minute}, cfg.RateLimit.Auth)
	assert.True(t, cfg.RateLimit.Disabled)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, DefaultViolationsTopic, cfg.Kafka.ViolationsTopic)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_MalformedValues(t *testing.T) {
	_, err := fromLookup(envOf(map[string]string{
		"RATELIMIT_API_LIMIT":  "lots",
		"RATELIMIT_API_WINDOW": "soon",
	}))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	assert.Contains(t, err.Error(), "RATELIMIT_API_LIMIT")
	assert.Contains(t, err.Error(), "RATELIMIT_API_WINDOW")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Server)
		errMsg string
	}{
		{name: "empty locale set", mutate: func(s *Server) { s.Locale.Supported = nil }, errMsg: "at least one locale"},
		{name: "region tag", mutate: func(s *Server) { s.Locale.Supported = []string{"en-US", "vi"} }, errMsg: "base language subtag"},
		{name: "uppercase", mutate: func(s *Server) { s.Locale.Supported = []string{"EN", "vi"} }, errMsg: "base language subtag"},
		{name: "not a tag", mutate: func(s *Server) { s.Locale.Supported = []string{"english", "vi"} }, errMsg: "BCP 47"},
		{name: "duplicate", mutate: func(s *Server) { s.Locale.Supported = []string{"vi", "en", "vi"} }, errMsg: "duplicate"},
		{name: "default outside set", mutate: func(s *Server) { s.Locale.Default = "fr" }, errMsg: "not in the supported set"},
		{name: "blank cookie", mutate: func(s *Server) { s.Locale.CookieName = " " }, errMsg: "cookie name"},
		{name: "zero limit", mutate: func(s *Server) { s.RateLimit.Auth.Limit = 0 }, errMsg: "auth policy"},
		{name: "zero window", mutate: func(s *Server) { s.RateLimit.API.Window = 0 }, errMsg: "api policy"},
		{name: "zero sweep", mutate: func(s *Server) { s.RateLimit.SweepInterval = 0 }, errMsg: "sweep interval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
