// Package window implements fixed-window counter stores.
package window

import (
	"context"
	"sync"
	"time"

	"storefront/internal/ratelimit/models"
)

const shardCount = 32

// MemoryStore is a process-local fixed-window store. Keys are spread over 32
// shards so unrelated identities never contend on one lock.
type MemoryStore struct {
	shards [shardCount]shard
}

type shard struct {
	mu      sync.Mutex
	entries map[string]models.Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i].entries = make(map[string]models.Entry)
	}
	return s
}

// Allow admits one request for key. An expired entry is replaced, never
// mutated, so a stale count cannot leak into the next window.
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration, now time.Time) (*models.Result, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	entry, ok := sh.entries[key]
	if !ok || entry.Expired(now) {
		entry = models.Entry{Count: 1, ResetAt: now.Add(window)}
		sh.entries[key] = entry
		return models.Admit(limit, entry.Count, entry.ResetAt), nil
	}

	if entry.Count < limit {
		entry.Count++
		sh.entries[key] = entry
		return models.Admit(limit, entry.Count, entry.ResetAt), nil
	}

	return models.Deny(limit, entry.ResetAt, now), nil
}

// Sweep deletes every entry with resetAt <= now, one shard at a time.
func (s *MemoryStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	for i := range s.shards {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		sh := &s.shards[i]
		sh.mu.Lock()
		for key, entry := range sh.entries {
			if entry.Expired(now) {
				delete(sh.entries, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		clear(sh.entries)
		sh.mu.Unlock()
	}
	return nil
}

// Len counts entries including expired ones not yet swept.
func (s *MemoryStore) Len() int {
	total, _ := s.Stats()
	return total
}

// Stats returns the total entry count and the count per shard.
func (s *MemoryStore) Stats() (total int, perShard []int) {
	perShard = make([]int, shardCount)
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		perShard[i] = len(sh.entries)
		sh.mu.Unlock()
		total += perShard[i]
	}
	return total, perShard
}

// Get returns a copy of the entry for key, for inspection in tests and
// diagnostics.
func (s *MemoryStore) Get(key string) (models.Entry, bool) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.entries[key]
	return e, ok
}

func (s *MemoryStore) shardFor(key string) *shard {
	return &s.shards[hashString(key)%shardCount]
}

// hashString is a djb2-style hash for shard selection.
func hashString(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = h*31 + uint32(s[i])
	}
	return h
}
