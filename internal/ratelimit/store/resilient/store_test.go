package resilient

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"storefront/internal/ratelimit/models"
	"storefront/internal/ratelimit/ports/mocks"
	"storefront/internal/ratelimit/store/window"
	"storefront/pkg/platform/circuit"
	"storefront/pkg/platform/sentinel"
)

//go:generate mockgen -source=../../ports/ports.go -destination=../../ports/mocks/mocks.go -package=mocks Store,ViolationPublisher

type ResilientStoreSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	primary     *mocks.MockStore
	fallback    *window.MemoryStore
	store       *Store
	transitions []circuit.State
	ctx         context.Context
	now         time.Time
}

func TestResilientStoreSuite(t *testing.T) {
	suite.Run(t, new(ResilientStoreSuite))
}

func (s *ResilientStoreSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.primary = mocks.NewMockStore(s.ctrl)
	s.fallback = window.NewMemoryStore()
	s.transitions = nil
	s.store = New(s.primary, s.fallback,
		WithBreaker(circuit.New("test", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2))),
		WithStateObserver(func(_ string, st circuit.State) { s.transitions = append(s.transitions, st) }),
	)
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *ResilientStoreSuite) TearDownTest() {
	s.ctrl.Finish()
}

var errRedisDown = fmt.Errorf("dial tcp: %w", sentinel.ErrUnavailable)

func (s *ResilientStoreSuite) TestHealthyPrimaryIsAuthoritative() {
	want := models.Admit(100, 1, s.now.Add(time.Minute))
	s.primary.EXPECT().Allow(gomock.Any(), "api:1", 100, time.Minute, s.now).Return(want, nil)

	got, err := s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.Require().NoError(err)
	s.Same(want, got)
	s.False(got.Degraded)
	s.Zero(s.fallback.Len())
}

func (s *ResilientStoreSuite) TestFailuresBelowThresholdSurface() {
	s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errRedisDown)

	_, err := s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.ErrorIs(err, sentinel.ErrUnavailable)
	s.False(s.store.Degraded())
}

func (s *ResilientStoreSuite) TestOpensAndServesFallback() {
	s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errRedisDown).Times(3)

	_, err := s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.Require().Error(err)

	result, err := s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.True(result.Degraded)
	s.Equal(99, result.Remaining)
	s.True(s.store.Degraded())

	result, err = s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.Require().NoError(err)
	s.Equal(98, result.Remaining, "fallback keeps counting while open")

	s.Equal([]circuit.State{circuit.StateOpen}, s.transitions)
}

func (s *ResilientStoreSuite) TestClosesAfterPrimarySuccesses() {
	gomock.InOrder(
		s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errRedisDown).Times(2),
		s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(models.Admit(100, 1, s.now.Add(time.Minute)), nil).Times(2),
	)

	_, _ = s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	_, _ = s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.Require().True(s.store.Degraded())

	_, err := s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.Require().NoError(err)
	s.True(s.store.Degraded())

	result, err := s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
	s.Require().NoError(err)
	s.False(result.Degraded)
	s.False(s.store.Degraded())
	s.Equal([]circuit.State{circuit.StateOpen, circuit.StateClosed}, s.transitions)
}

func (s *ResilientStoreSuite) TestCancellationDoesNotTrip() {
	s.primary.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, context.Canceled).Times(5)

	for range 5 {
		_, err := s.store.Allow(s.ctx, "api:1", 100, time.Minute, s.now)
		s.ErrorIs(err, context.Canceled)
	}
	s.False(s.store.Degraded())
}

func (s *ResilientStoreSuite) TestSweepClearLen() {
	_, _ = s.fallback.Allow(s.ctx, "api:old", 100, time.Minute, s.now)

	s.primary.EXPECT().Sweep(gomock.Any(), s.now.Add(time.Hour)).Return(0, nil)
	removed, err := s.store.Sweep(s.ctx, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(1, removed)

	s.primary.EXPECT().Clear(gomock.Any()).Return(errors.New("read only"))
	s.Error(s.store.Clear(s.ctx))

	s.primary.EXPECT().Len().Return(-1)
	s.Equal(0, s.store.Len())
}
