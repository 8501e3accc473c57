package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/internal/platform/config"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
)

// Client wraps the go-redis client with health checking capabilities.
type Client struct {
	*redis.Client
}

// New creates a Redis client from the provided configuration and pings it.
// Returns nil, nil if the URL is empty (shared store disabled).
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "parse redis URL")
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w: %w", sentinel.ErrUnavailable, err)
	}

	return &Client{Client: client}, nil
}

// Health backs the readiness probe of the shared window store.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}
