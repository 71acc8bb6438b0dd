package ratelimit

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseHeaders() http.Header
}

// RegisterSteps registers per-IP rate limiting step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I GET "([^"]*)" from IP "([^"]*)"$`, steps.getFromIP)
	ctx.Step(`^I GET "([^"]*)" (\d+) times from IP "([^"]*)"$`, steps.getNTimesFromIP)
	ctx.Step(`^the response should carry rate limit headers$`, steps.shouldCarryHeaders)
	ctx.Step(`^the response should carry a Retry-After header$`, steps.shouldCarryRetryAfter)
}

type ratelimitSteps struct {
	tc TestContext
}

// getFromIP relies on the server honoring X-Forwarded-For for the client IP.
func (s *ratelimitSteps) getFromIP(ctx context.Context, path, ip string) error {
	return s.tc.GET(path, map[string]string{"X-Forwarded-For": ip})
}

func (s *ratelimitSteps) getNTimesFromIP(ctx context.Context, path string, n int, ip string) error {
	for range n {
		if err := s.getFromIP(ctx, path, ip); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == http.StatusTooManyRequests {
			return nil
		}
	}
	return nil
}

func (s *ratelimitSteps) shouldCarryHeaders(ctx context.Context) error {
	h := s.tc.GetLastResponseHeaders()
	for _, name := range []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"} {
		if h.Get(name) == "" {
			return fmt.Errorf("missing %s header", name)
		}
	}
	return nil
}

func (s *ratelimitSteps) shouldCarryRetryAfter(ctx context.Context) error {
	if s.tc.GetLastResponseHeaders().Get("Retry-After") == "" {
		return fmt.Errorf("missing Retry-After header")
	}
	return nil
}
