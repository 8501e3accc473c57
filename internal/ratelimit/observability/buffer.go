package observability

import (
	"sync"

	"storefront/internal/ratelimit/models"
)

// RingBuffer is a bounded, thread-safe queue of violations. When full, the
// oldest event is dropped to make room.
type RingBuffer struct {
	mu       sync.Mutex
	events   []*models.Violation
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int
	dropped  int64
}

func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 10000
	}
	return &RingBuffer{
		events:   make([]*models.Violation, capacity),
		capacity: capacity,
	}
}

// Enqueue adds v and reports whether an older event was dropped for it.
func (b *RingBuffer) Enqueue(v *models.Violation) (dropped bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.capacity {
		b.events[b.tail] = nil
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		dropped = true
	}

	b.events[b.head] = v
	b.head = (b.head + 1) % b.capacity
	b.count++
	return dropped
}

// DequeueBatch removes up to n events, oldest first.
func (b *RingBuffer) DequeueBatch(n int) []*models.Violation {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	n = min(n, b.count)

	result := make([]*models.Violation, n)
	for i := range n {
		result[i] = b.events[b.tail]
		b.events[b.tail] = nil
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return result
}

func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of events dropped so far.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}
