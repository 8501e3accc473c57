package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"storefront/pkg/platform/sentinel"
)

// ErrDenied lets concurrent callbacks report a well-formed rejection.
var ErrDenied = errors.New("denied")

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Admitted    int32
	Denied      int32
	Unavailable int32
	Errors      int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Admitted + r.Denied + r.Unavailable + r.Errors
}

// RunConcurrent runs fn in parallel goroutines released together and
// categorises each outcome.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var admitted, denied, unavailable, errs atomic.Int32
	start := make(chan struct{})

	for i := range goroutines {
		wg.Go(func() {
			<-start
			err := fn(i)
			switch {
			case err == nil:
				admitted.Add(1)
			case errors.Is(err, ErrDenied):
				denied.Add(1)
			case errors.Is(err, sentinel.ErrUnavailable):
				unavailable.Add(1)
			default:
				errs.Add(1)
			}
		})
	}

	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Admitted:    admitted.Load(),
		Denied:      denied.Load(),
		Unavailable: unavailable.Load(),
		Errors:      errs.Load(),
	}
}

// RunConcurrentCtx executes fn in parallel goroutines with context support.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}
