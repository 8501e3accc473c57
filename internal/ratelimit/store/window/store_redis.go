package window

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/ratelimit/models"
	"storefront/pkg/platform/sentinel"
)

// DefaultKeyPrefix scopes limiter keys inside a shared Redis.
const DefaultKeyPrefix = "storefront:rl:"

// fixedWindowScript admits one request atomically. It never increments past
// the limit, and only the first hit of a window sets the expiry, so denials
// cannot extend the window.
//
// KEYS[1] counter key, ARGV[1] window in ms, ARGV[2] limit.
// Returns {count, pttl_ms, allowed}.
var fixedWindowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[2])
if current >= limit then
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[1])
    ttl = tonumber(ARGV[1])
  end
  return {current, ttl, 0}
end
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl, 1}
`)

// RedisStore shares fixed windows between edge instances. Redis key expiry
// replaces the sweep: an expired counter simply no longer exists.
type RedisStore struct {
	client redis.Scripter
	prefix string
}

// RedisOption configures a RedisStore instance.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

func NewRedisStore(client redis.Scripter, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Preload caches the script on the server so the first Allow of each
// process does not pay for an EVALSHA miss.
func (s *RedisStore) Preload(ctx context.Context) error {
	if err := fixedWindowScript.Load(ctx, s.client).Err(); err != nil {
		return fmt.Errorf("load fixed window script: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Allow runs the fixed-window script. The window end is derived from the key's
// remaining TTL relative to now, so callers on different hosts agree on it up
// to clock skew.
func (s *RedisStore) Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (*models.Result, error) {
	vals, err := fixedWindowScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds(), limit).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis fixed window %q: %w: %w", key, sentinel.ErrUnavailable, err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("redis fixed window %q: unexpected reply length %d: %w", key, len(vals), sentinel.ErrUnavailable)
	}

	count, ttl, allowed := int(vals[0]), time.Duration(vals[1])*time.Millisecond, vals[2] == 1
	resetAt := now.Add(ttl)
	if allowed {
		return models.Admit(limit, count, resetAt), nil
	}
	return models.Deny(limit, resetAt, now), nil
}

// Sweep is a no-op: Redis expires counters itself.
func (s *RedisStore) Sweep(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Clear is a no-op. The keyspace is shared with other instances, so one
// process stopping must not reset everyone's counters.
func (s *RedisStore) Clear(context.Context) error {
	return nil
}

// Len is unknown for a shared store.
func (s *RedisStore) Len() int {
	return -1
}
