package locale

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

const cookieName = "NEXT_LOCALE"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
	GetLastResponseCookie(name string) *http.Cookie
}

// RegisterSteps registers locale redirect step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &localeSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)" with Accept-Language "([^"]*)"$`, steps.getWithAcceptLanguage)
	ctx.Step(`^I GET "([^"]*)" with locale cookie "([^"]*)" and Accept-Language "([^"]*)"$`, steps.getWithCookie)
	ctx.Step(`^I should be redirected to "([^"]*)"$`, steps.redirectedTo)
	ctx.Step(`^the locale cookie should be "([^"]*)" for one year$`, steps.cookieSet)
	ctx.Step(`^I follow the redirect$`, steps.followRedirect)
}

type localeSteps struct {
	tc     TestContext
	cookie *http.Cookie
}

func (s *localeSteps) getWithAcceptLanguage(ctx context.Context, path, acceptLanguage string) error {
	return s.tc.GET(path, map[string]string{"Accept-Language": acceptLanguage})
}

func (s *localeSteps) getWithCookie(ctx context.Context, path, value, acceptLanguage string) error {
	return s.tc.GET(path, map[string]string{
		"Accept-Language": acceptLanguage,
		"Cookie":          cookieName + "=" + value,
	})
}

func (s *localeSteps) redirectedTo(ctx context.Context, location string) error {
	if status := s.tc.GetLastResponseStatus(); status != http.StatusTemporaryRedirect {
		return fmt.Errorf("expected 307 but got %d", status)
	}
	if actual := s.tc.GetLastResponseHeader("Location"); actual != location {
		return fmt.Errorf("expected Location %q but got %q", location, actual)
	}
	return nil
}

func (s *localeSteps) cookieSet(ctx context.Context, value string) error {
	c := s.tc.GetLastResponseCookie(cookieName)
	if c == nil {
		return fmt.Errorf("no %s cookie set", cookieName)
	}
	if c.Value != value || c.Path != "/" || c.MaxAge != 31536000 {
		return fmt.Errorf("unexpected cookie: value=%q path=%q max-age=%d", c.Value, c.Path, c.MaxAge)
	}
	s.cookie = c
	return nil
}

func (s *localeSteps) followRedirect(ctx context.Context) error {
	location := s.tc.GetLastResponseHeader("Location")
	if location == "" {
		return fmt.Errorf("no redirect to follow")
	}
	headers := map[string]string{}
	if s.cookie != nil {
		headers["Cookie"] = s.cookie.Name + "=" + s.cookie.Value
	}
	return s.tc.GET(location, headers)
}
