package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"storefront/internal/ratelimit/metrics"
	"storefront/internal/ratelimit/models"
)

type fakeTarget struct {
	calls   atomic.Int32
	removed int
	left    int
	err     error
}

func (f *fakeTarget) Sweep(context.Context) (int, error) {
	f.calls.Add(1)
	return f.removed, f.err
}

func (f *fakeTarget) Len() int { return f.left }

type SweepWorkerSuite struct {
	suite.Suite
	target  *fakeTarget
	metrics *metrics.Metrics
	worker  *Worker
}

func TestSweepWorkerSuite(t *testing.T) {
	suite.Run(t, new(SweepWorkerSuite))
}

func (s *SweepWorkerSuite) SetupTest() {
	s.target = &fakeTarget{}
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.worker = New(s.target, models.ClassAPI, WithMetrics(s.metrics), WithInterval(10*time.Millisecond))
}

func (s *SweepWorkerSuite) TestRunOnceReportsRemovedAndRemaining() {
	s.target.removed = 7
	s.target.left = 3

	res, err := s.worker.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(7, res.Removed)
	s.Equal(3, res.Remaining)

	s.Equal(7.0, testutil.ToFloat64(s.metrics.SweepRemovedTotal.WithLabelValues("api")))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.StoreEntries.WithLabelValues("api")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SweepRunsTotal.WithLabelValues("api", "success")))
}

func (s *SweepWorkerSuite) TestRunOncePropagatesErrors() {
	s.target.err = context.DeadlineExceeded

	res, err := s.worker.RunOnce(context.Background())
	s.Require().Error(err)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Nil(res)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.SweepRunsTotal.WithLabelValues("api", "error")))
}

func (s *SweepWorkerSuite) TestStartTicksUntilCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.worker.Start(ctx) }()

	s.Eventually(func() bool { return s.target.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.True(errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		s.Fail("worker did not stop")
	}
}

func (s *SweepWorkerSuite) TestStartSurvivesSweepErrors() {
	s.target.err = errors.New("transient")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.worker.Start(ctx) }()

	s.Eventually(func() bool { return s.target.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}
