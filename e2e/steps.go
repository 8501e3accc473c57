package e2e

import (
	"github.com/cucumber/godog"

	"storefront/e2e/steps/common"
	"storefront/e2e/steps/locale"
	"storefront/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	locale.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
