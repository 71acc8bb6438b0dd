package e2e

import (
	"github.com/cucumber/godog"

	"todolists/e2e/steps/common"
	"todolists/e2e/steps/lists"
	"todolists/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	// Background, generic requests and assertions
	common.RegisterSteps(ctx, tc)

	// To-do lists and items
	lists.RegisterSteps(ctx, tc)

	// Per-IP request limits
	ratelimit.RegisterSteps(ctx, tc)
}
