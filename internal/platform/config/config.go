package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	dErrors "storefront/pkg/domain-errors"
	pstrings "storefront/pkg/platform/strings"
)

// Server captures process level configuration for the edge gate.
type Server struct {
	Addr          string
	Environment   string
	LogLevel      string
	AllowedOrigin string
	UpstreamURL   string
	Locale        LocaleConfig
	RateLimit     RateLimitConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
}

// LocaleConfig is the closed locale set served by the storefront.
type LocaleConfig struct {
	Supported  []string
	Default    string
	CookieName string
}

// PolicyConfig is one fixed-window admission policy.
type PolicyConfig struct {
	Limit  int
	Window time.Duration
}

type RateLimitConfig struct {
	Auth          PolicyConfig
	API           PolicyConfig
	SweepInterval time.Duration
	Disabled      bool
}

// RedisConfig enables the shared window store when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables violation publishing when Brokers is set.
type KafkaConfig struct {
	Brokers         string
	ViolationsTopic string
}

const (
	DefaultAddr            = ":8080"
	DefaultLocaleCookie    = "NEXT_LOCALE"
	DefaultLocale          = "vi"
	DefaultAllowedOrigin   = "*"
	DefaultViolationsTopic = "storefront.ratelimit.violations"
)

// DefaultLocales is the locale set used when LOCALES is unset.
var DefaultLocales = []string{"en", "vi"}

// Default returns the configuration used when no environment overrides are set.
func Default() Server {
	return Server{
		Addr:          DefaultAddr,
		Environment:   "local",
		LogLevel:      "info",
		AllowedOrigin: DefaultAllowedOrigin,
		Locale: LocaleConfig{
			Supported:  slices.Clone(DefaultLocales),
			Default:    DefaultLocale,
			CookieName: DefaultLocaleCookie,
		},
		RateLimit: RateLimitConfig{
			Auth:          PolicyConfig{Limit: 5, Window: 15 * time.Minute},
			API:           PolicyConfig{Limit: 100, Window: time.Minute},
			SweepInterval: 5 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Kafka: KafkaConfig{ViolationsTopic: DefaultViolationsTopic},
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numeric or duration values are reported together; unset values keep
// their defaults.
func FromEnv() (Server, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	cfg := Default()
	p := parser{lookup: lookup}

	p.str("STOREFRONT_ADDR", &cfg.Addr)
	p.str("ENVIRONMENT", &cfg.Environment)
	p.str("LOG_LEVEL", &cfg.LogLevel)
	p.str("ALLOWED_ORIGIN", &cfg.AllowedOrigin)
	p.str("UPSTREAM_URL", &cfg.UpstreamURL)

	if v, ok := p.get("LOCALES"); ok {
		cfg.Locale.Supported = pstrings.SplitList(v)
	}
	p.str("DEFAULT_LOCALE", &cfg.Locale.Default)
	p.str("LOCALE_COOKIE", &cfg.Locale.CookieName)

	p.int("RATELIMIT_AUTH_LIMIT", &cfg.RateLimit.Auth.Limit)
	p.duration("RATELIMIT_AUTH_WINDOW", &cfg.RateLimit.Auth.Window)
	p.int("RATELIMIT_API_LIMIT", &cfg.RateLimit.API.Limit)
	p.duration("RATELIMIT_API_WINDOW", &cfg.RateLimit.API.Window)
	p.duration("RATELIMIT_SWEEP_INTERVAL", &cfg.RateLimit.SweepInterval)
	p.bool("RATELIMIT_DISABLED", &cfg.RateLimit.Disabled)

	p.str("REDIS_URL", &cfg.Redis.URL)
	p.int("REDIS_POOL_SIZE", &cfg.Redis.PoolSize)
	p.int("REDIS_MIN_IDLE_CONNS", &cfg.Redis.MinIdleConns)
	p.duration("REDIS_DIAL_TIMEOUT", &cfg.Redis.DialTimeout)
	p.duration("REDIS_READ_TIMEOUT", &cfg.Redis.ReadTimeout)
	p.duration("REDIS_WRITE_TIMEOUT", &cfg.Redis.WriteTimeout)

	p.str("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	p.str("KAFKA_VIOLATIONS_TOPIC", &cfg.Kafka.ViolationsTopic)

	if err := errors.Join(p.errs...); err != nil {
		return cfg, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid environment: "+err.Error())
	}
	return cfg, nil
}

// Validate checks invariants the edge relies on at request time.
func (c Server) Validate() error {
	if len(c.Locale.Supported) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one locale is required")
	}
	seen := make(map[string]struct{}, len(c.Locale.Supported))
	for _, code := range c.Locale.Supported {
		if err := validateLocaleCode(code); err != nil {
			return err
		}
		if _, dup := seen[code]; dup {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("duplicate locale %q", code))
		}
		seen[code] = struct{}{}
	}
	if _, ok := seen[c.Locale.Default]; !ok {
		return dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("default locale %q is not in the supported set", c.Locale.Default))
	}
	if strings.TrimSpace(c.Locale.CookieName) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "locale cookie name is required")
	}

	for name, p := range map[string]PolicyConfig{"auth": c.RateLimit.Auth, "api": c.RateLimit.API} {
		if p.Limit <= 0 || p.Window <= 0 {
			return dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("%s policy needs a positive limit and window", name))
		}
	}
	if c.RateLimit.SweepInterval <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "sweep interval must be positive")
	}
	return nil
}

// Locale codes double as the first path segment, so only canonical lowercase
// base language subtags are accepted ("en", not "EN" or "en-US").
func validateLocaleCode(code string) error {
	tag, err := language.Parse(code)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, fmt.Sprintf("locale %q is not a BCP 47 tag: %v", code, err))
	}
	base, _ := tag.Base()
	if base.String() != code {
		return dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("locale %q must be a lowercase base language subtag", code))
	}
	return nil
}

// IsProduction reports whether the process runs in a production environment.
func (c Server) IsProduction() bool {
	return c.Environment == "production"
}

type parser struct {
	lookup func(string) (string, bool)
	errs   []error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) str(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}

func (p *parser) int(key string, dst *int) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = n
}

func (p *parser) duration(key string, dst *time.Duration) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = d
}

func (p *parser) bool(key string, dst *bool) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return
	}
	*dst = b
}
