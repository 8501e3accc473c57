package models

import (
	"math"
	"time"

	"github.com/google/uuid"

	dErrors "storefront/pkg/domain-errors"
)

// RouteClass partitions /api traffic into independently limited keyspaces.
type RouteClass string

const (
	// ClassAuth covers /api/auth/*: login, register, password reset.
	ClassAuth RouteClass = "auth"
	// ClassAPI covers every other /api path.
	ClassAPI RouteClass = "api"
)

// IsValid checks if the route class is one of the supported values.
func (c RouteClass) IsValid() bool {
	return c == ClassAuth || c == ClassAPI
}

func (c RouteClass) String() string {
	return string(c)
}

// Entry is one fixed-window counter. Once now reaches ResetAt the entry is
// treated as absent and replaced on the next access.
type Entry struct {
	Count   int
	ResetAt time.Time
}

// Expired reports whether the window has closed at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ResetAt)
}

// Result is the outcome of one admission check.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is whole seconds until ResetAt, rounded up; set only on denial.
	RetryAfter int `json:"retry_after,omitempty"`
	// Degraded marks a decision taken by the local fallback store.
	Degraded bool `json:"degraded,omitempty"`
}

// Admit builds the result for an admitted request that brought the window to count.
func Admit(limit, count int, resetAt time.Time) *Result {
	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   resetAt,
	}
}

// Deny builds the result for a rejected request.
func Deny(limit int, resetAt, now time.Time) *Result {
	return &Result{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: RetryAfterSeconds(resetAt, now),
	}
}

// RetryAfterSeconds rounds the time left in the window up to whole seconds,
// never below one.
func RetryAfterSeconds(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	return max(secs, 1)
}

// Violation is the audit record emitted when a request is denied. Identity is
// always anonymized before it reaches a Violation.
type Violation struct {
	ID            string     `json:"id"`
	Identity      string     `json:"identity"`
	Class         RouteClass `json:"class"`
	Path          string     `json:"path"`
	Method        string     `json:"method"`
	Limit         int        `json:"limit"`
	WindowSeconds int        `json:"window_seconds"`
	RequestID     string     `json:"request_id,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// NewViolation creates a Violation with domain invariant validation.
func NewViolation(class RouteClass, identity, method, path string, limit int, window time.Duration, occurredAt time.Time) (*Violation, error) {
	if !class.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid route class")
	}
	if identity == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity cannot be empty")
	}
	if limit <= 0 || window <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "violation needs a positive limit and window")
	}
	return &Violation{
		ID:            uuid.NewString(),
		Identity:      identity,
		Class:         class,
		Path:          path,
		Method:        method,
		Limit:         limit,
		WindowSeconds: int(window / time.Second),
		OccurredAt:    occurredAt,
	}, nil
}
