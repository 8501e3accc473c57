package window

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"storefront/pkg/platform/sentinel"
)

type RedisStoreSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	store  *RedisStore
	ctx    context.Context
	now    time.Time
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.store = NewRedisStore(s.client)
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *RedisStoreSuite) TearDownTest() {
	_ = s.client.Close()
}

func (s *RedisStoreSuite) TestBoundary() {
	var remaining []int
	for range testLimit {
		result, err := s.store.Allow(s.ctx, "auth:203.0.113.9", testLimit, testWindow, s.now)
		s.Require().NoError(err)
		s.Require().True(result.Allowed)
		remaining = append(remaining, result.Remaining)
	}
	s.Equal([]int{4, 3, 2, 1, 0}, remaining)

	result, err := s.store.Allow(s.ctx, "auth:203.0.113.9", testLimit, testWindow, s.now)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(0, result.Remaining)
	s.Equal(testLimit, result.Limit)
	s.Equal(900, result.RetryAfter)

	raw, err := s.client.Get(s.ctx, DefaultKeyPrefix+"auth:203.0.113.9").Int()
	s.Require().NoError(err)
	s.Equal(testLimit, raw, "denials never push the counter past the limit")
}

func (s *RedisStoreSuite) TestDenialDoesNotExtendWindow() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "auth:x", testLimit, testWindow, s.now)
		s.Require().NoError(err)
	}

	s.mr.FastForward(10 * time.Minute)
	result, err := s.store.Allow(s.ctx, "auth:x", testLimit, testWindow, s.now.Add(10*time.Minute))
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Equal(300, result.RetryAfter)
}

func (s *RedisStoreSuite) TestWindowReset() {
	for range testLimit + 1 {
		_, err := s.store.Allow(s.ctx, "auth:reset", testLimit, testWindow, s.now)
		s.Require().NoError(err)
	}

	s.mr.FastForward(testWindow)
	result, err := s.store.Allow(s.ctx, "auth:reset", testLimit, testWindow, s.now.Add(testWindow))
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(testLimit-1, result.Remaining)
}

func (s *RedisStoreSuite) TestNamespacesAreIndependent() {
	for range testLimit + 1 {
		_, err := s.store.Allow(s.ctx, "auth:203.0.113.9", testLimit, testWindow, s.now)
		s.Require().NoError(err)
	}

	result, err := s.store.Allow(s.ctx, "api:203.0.113.9", 100, time.Minute, s.now)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(99, result.Remaining)
}

func (s *RedisStoreSuite) TestKeyPrefixOption() {
	store := NewRedisStore(s.client, WithKeyPrefix("other:"))
	_, err := store.Allow(s.ctx, "api:1", 10, time.Minute, s.now)
	s.Require().NoError(err)

	s.True(s.mr.Exists("other:api:1"))
	s.False(s.mr.Exists(DefaultKeyPrefix + "api:1"))
}

func (s *RedisStoreSuite) TestSweepAndClearLeaveSharedKeys() {
	_, err := s.store.Allow(s.ctx, "api:1", 10, time.Minute, s.now)
	s.Require().NoError(err)

	removed, err := s.store.Sweep(s.ctx, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Zero(removed)
	s.Require().NoError(s.store.Clear(s.ctx))
	s.True(s.mr.Exists(DefaultKeyPrefix + "api:1"))
	s.Equal(-1, s.store.Len())
}

func (s *RedisStoreSuite) TestUnavailable() {
	s.mr.Close()

	_, err := s.store.Allow(s.ctx, "api:1", 10, time.Minute, s.now)
	s.ErrorIs(err, sentinel.ErrUnavailable)
}

func (s *RedisStoreSuite) TestPreload() {
	s.Require().NoError(s.store.Preload(s.ctx))
	result, err := s.store.Allow(s.ctx, "api:1", 10, time.Minute, s.now)
	s.Require().NoError(err)
	s.Equal(9, result.Remaining)

	s.mr.Close()
	s.ErrorIs(s.store.Preload(s.ctx), sentinel.ErrUnavailable)
}
