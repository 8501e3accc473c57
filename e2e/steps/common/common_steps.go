package common

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
	GetLastResponseBody() []byte
}

// RegisterSteps registers common step definitions used across features
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &commonSteps{tc: tc}

	ctx.Step(`^the storefront edge is running$`, steps.edgeIsRunning)
	ctx.Step(`^I GET "([^"]*)"$`, steps.get)
	ctx.Step(`^the response status should be (\d+)$`, steps.responseStatusShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be "([^"]*)"$`, steps.responseHeaderShouldBe)
	ctx.Step(`^the response header "([^"]*)" should be absent$`, steps.responseHeaderShouldBeAbsent)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, steps.responseFieldShouldEqual)
	ctx.Step(`^the response should carry the security headers$`, steps.securityHeaders)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) edgeIsRunning(ctx context.Context) error {
	if err := s.tc.GET("/health/live", nil); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != 200 {
		return fmt.Errorf("edge not live: status %d", status)
	}
	return nil
}

func (s *commonSteps) get(ctx context.Context, path string) error {
	return s.tc.GET(path, nil)
}

func (s *commonSteps) responseStatusShouldBe(ctx context.Context, expectedStatus int) error {
	actualStatus := s.tc.GetLastResponseStatus()
	if actualStatus != expectedStatus {
		return fmt.Errorf("expected status %d but got %d", expectedStatus, actualStatus)
	}
	return nil
}

func (s *commonSteps) responseHeaderShouldBe(ctx context.Context, name, expected string) error {
	if actual := s.tc.GetLastResponseHeader(name); actual != expected {
		return fmt.Errorf("expected header %s=%q but got %q", name, expected, actual)
	}
	return nil
}

func (s *commonSteps) responseHeaderShouldBeAbsent(ctx context.Context, name string) error {
	if actual := s.tc.GetLastResponseHeader(name); actual != "" {
		return fmt.Errorf("expected no %s header but got %q", name, actual)
	}
	return nil
}

func (s *commonSteps) responseFieldShouldEqual(ctx context.Context, field, expected string) error {
	value, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if fmt.Sprint(value) != expected {
		return fmt.Errorf("expected %s=%q but got %v\nResponse: %s", field, expected, value, string(s.tc.GetLastResponseBody()))
	}
	return nil
}

func (s *commonSteps) securityHeaders(ctx context.Context) error {
	for name, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if err := s.responseHeaderShouldBe(ctx, name, want); err != nil {
			return err
		}
	}
	if s.tc.GetLastResponseHeader("Access-Control-Allow-Origin") == "" {
		return fmt.Errorf("missing Access-Control-Allow-Origin")
	}
	return nil
}
