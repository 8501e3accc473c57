package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) TestStartsClosed() {
	b := New("redis")
	s.False(b.IsOpen())
	s.Equal(StateClosed, b.State())
	s.Equal("redis", b.Name())
	s.Equal("closed", b.State().String())
}

func (s *BreakerSuite) TestOpensOnConsecutiveFailures() {
	b := New("redis", WithFailureThreshold(3))

	for range 2 {
		useFallback, change := b.RecordFailure()
		s.False(useFallback)
		s.False(change.Opened)
	}

	useFallback, change := b.RecordFailure()
	s.True(useFallback)
	s.True(change.Opened)
	s.Equal("open", b.State().String())

	useFallback, change = b.RecordFailure()
	s.True(useFallback)
	s.False(change.Opened, "already open must not report a second transition")
}

func (s *BreakerSuite) TestSuccessWhileClosedResetsFailures() {
	b := New("redis", WithFailureThreshold(2))

	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	s.False(b.IsOpen())

	b.RecordFailure()
	s.True(b.IsOpen())
}

func (s *BreakerSuite) TestRecoveryNeedsConsecutiveSuccesses() {
	b := New("redis", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	s.Require().True(b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	s.False(usePrimary)
	s.False(change.Closed)

	b.RecordFailure()
	usePrimary, _ = b.RecordSuccess()
	s.False(usePrimary, "failure while recovering restarts the success count")

	usePrimary, change = b.RecordSuccess()
	s.True(usePrimary)
	s.True(change.Closed)
	s.False(b.IsOpen())
}

func (s *BreakerSuite) TestReset() {
	b := New("redis", WithFailureThreshold(1))
	b.RecordFailure()
	b.Reset()
	s.Equal(StateClosed, b.State())
}

func TestNonPositiveThresholdsKeepDefaults(t *testing.T) {
	b := New("redis", WithFailureThreshold(0), WithSuccessThreshold(-1), nil)
	assert.Equal(t, 5, b.failureThreshold)
	assert.Equal(t, 3, b.successThreshold)
}
