// Package ports defines the interfaces the limiter consumes.
package ports

import (
	"context"
	"time"

	"storefront/internal/ratelimit/models"
)

// Store holds fixed-window entries keyed by namespaced identity. Allow must be
// atomic per key: concurrent calls for one key are linearizable.
type Store interface {
	// Allow admits one request for key under limit per window, evaluated at now.
	Allow(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (*models.Result, error)

	// Sweep deletes every entry whose window closed at or before now and
	// reports how many were removed.
	Sweep(ctx context.Context, now time.Time) (int, error)

	// Clear drops every entry owned by this store.
	Clear(ctx context.Context) error

	// Len reports the number of live entries, or -1 when the store cannot tell.
	Len() int
}

// ViolationPublisher receives denied-request audit records. Publish must not
// block the request path.
type ViolationPublisher interface {
	Publish(ctx context.Context, v *models.Violation)
}
