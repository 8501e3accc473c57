package window

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

var benchNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func BenchmarkAllow(b *testing.B) {
	store := NewMemoryStore()
	ctx := context.Background()

	for b.Loop() {
		_, _ = store.Allow(ctx, "api:bench", 1000, time.Minute, benchNow)
	}
}

func BenchmarkAllow_Parallel(b *testing.B) {
	store := NewMemoryStore()
	ctx := context.Background()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = store.Allow(ctx, "api:bench", 1000, time.Minute, benchNow)
		}
	})
}

// High cardinality is the realistic edge workload: one key per client IP.
func BenchmarkAllow_HighCardinality_Parallel(b *testing.B) {
	store := NewMemoryStore()
	ctx := context.Background()
	var counter atomic.Int64

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := counter.Add(1)
			key := fmt.Sprintf("api:10.%d.%d.%d", (i/65536)%256, (i/256)%256, i%256)
			_, _ = store.Allow(ctx, key, 100, time.Minute, benchNow)
		}
	})
}

func BenchmarkSweep(b *testing.B) {
	store := NewMemoryStore()
	ctx := context.Background()
	for i := range 100_000 {
		_, _ = store.Allow(ctx, fmt.Sprintf("api:%d", i), 100, time.Minute, benchNow)
	}

	// Sweeping before expiry scans without deleting, so every iteration does the same work.
	for b.Loop() {
		_, _ = store.Sweep(ctx, benchNow)
	}
}
