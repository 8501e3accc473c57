package ratelimit

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	Do(method, path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers rate-limiting step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I POST to "([^"]*)" (\d+) times$`, steps.postNTimes)
	ctx.Step(`^the remaining counts should have been "([^"]*)"$`, steps.remainingCountsShouldBe)
	ctx.Step(`^I POST to "([^"]*)" again$`, steps.postOnce)
	ctx.Step(`^the Retry-After header should be between (\d+) and (\d+) seconds$`, steps.retryAfterBetween)
}

type ratelimitSteps struct {
	tc        TestContext
	remaining []string
}

func (s *ratelimitSteps) postNTimes(ctx context.Context, path string, n int) error {
	s.remaining = s.remaining[:0]
	for i := range n {
		if err := s.tc.Do("POST", path, nil); err != nil {
			return err
		}
		if status := s.tc.GetLastResponseStatus(); status == 429 {
			return fmt.Errorf("call %d was rejected early", i+1)
		}
		s.remaining = append(s.remaining, s.tc.GetLastResponseHeader("X-RateLimit-Remaining"))
	}
	return nil
}

func (s *ratelimitSteps) remainingCountsShouldBe(ctx context.Context, expected string) error {
	actual := fmt.Sprint(s.remaining)
	actual = actual[1 : len(actual)-1]
	if actual != expected {
		return fmt.Errorf("expected remaining %q but got %q", expected, actual)
	}
	return nil
}

func (s *ratelimitSteps) postOnce(ctx context.Context, path string) error {
	return s.tc.Do("POST", path, nil)
}

func (s *ratelimitSteps) retryAfterBetween(ctx context.Context, low, high int) error {
	v, err := strconv.Atoi(s.tc.GetLastResponseHeader("Retry-After"))
	if err != nil {
		return fmt.Errorf("invalid Retry-After: %w", err)
	}
	if v < low || v > high {
		return fmt.Errorf("expected Retry-After in [%d,%d] but got %d", low, high, v)
	}
	return nil
}
