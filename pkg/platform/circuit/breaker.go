// Package circuit provides a two-state circuit breaker used to guard calls to
// shared infrastructure (Redis) behind a local fallback.
package circuit

import "sync"

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the primary path is healthy.
	StateClosed State = iota
	// StateOpen means the primary path tripped and callers should use their fallback.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// StateChange reports a transition caused by the last recorded outcome.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker opens after failureThreshold consecutive failures and closes again
// after successThreshold consecutive successes observed while open.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
}

// Option configures a Breaker instance.
type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures needed to open. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive successes needed to close. Default 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// New creates a closed circuit breaker.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// RecordFailure records a failed primary call. useFallback is true once the
// circuit is open.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.successes = 0

	switch {
	case b.state == StateOpen:
		return true, StateChange{}
	case b.failures >= b.failureThreshold:
		b.state = StateOpen
		return true, StateChange{Opened: true}
	default:
		return false, StateChange{}
	}
}

// RecordSuccess records a successful primary call. usePrimary is false while
// the circuit is still open and recovering.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateClosed {
		b.failures = 0
		return true, StateChange{}
	}

	b.successes++
	if b.successes < b.successThreshold {
		return false, StateChange{}
	}
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
	return true, StateChange{Closed: true}
}

// Reset forces the breaker closed with zero counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
