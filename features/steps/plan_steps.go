//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"

	"video-trimmer/domain/edit"

	"github.com/cucumber/godog"
)

// planContext holds test state for plan scenarios
type planContext struct {
	sourceDuration float64
	plan           *edit.Plan
	err            error
}

// SharedPlanContext is reset before each scenario via Before hook
var SharedPlanContext *planContext

func getPlanContext() *planContext {
	return SharedPlanContext
}

func InitializePlanScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedPlanContext = &planContext{}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedPlanContext = nil
		return c, nil
	})

	ctx.Step(`^a source video of (\d+(?:\.\d+)?) seconds$`, aSourceVideoOfSeconds)
	ctx.Step(`^I plan a trim from "([^"]*)" to "([^"]*)"$`, iPlanATrimFromTo)
	ctx.Step(`^I plan a trim from "([^"]*)" to "([^"]*)" at (\d+(?:\.\d+)?)x speed$`, iPlanATrimAtSpeed)
	ctx.Step(`^I plan a trim from "([^"]*)" to "([^"]*)" with a (\d+(?:\.\d+)?) second fade out$`, iPlanATrimWithFadeOut)
	ctx.Step(`^I plan a trim from "([^"]*)" to "([^"]*)" rotated by "([^"]*)"$`, iPlanATrimRotatedBy)
	ctx.Step(`^I attempt to plan a trim from "([^"]*)" to "([^"]*)"$`, iAttemptToPlanATrimFromTo)
	ctx.Step(`^I attempt to plan a trim from "([^"]*)" to "([^"]*)" at (\d+(?:\.\d+)?)x speed$`, iAttemptToPlanATrimAtSpeed)
	ctx.Step(`^the plan should have (\d+) invocations?$`, thePlanShouldHaveInvocations)
	ctx.Step(`^invocation (\d+) should be a "([^"]*)" invocation$`, invocationShouldBeA)
	ctx.Step(`^invocation (\d+) should read the output of invocation (\d+)$`, invocationShouldReadTheOutputOf)
	ctx.Step(`^invocation (\d+) should include arguments:$`, invocationShouldIncludeArguments)
	ctx.Step(`^the audio filters should be "([^"]*)"$`, theAudioFiltersShouldBe)
	ctx.Step(`^the video filters should be "([^"]*)"$`, theVideoFiltersShouldBe)
	ctx.Step(`^I should receive an invalid range error$`, iShouldReceiveAnInvalidRangeError)
	ctx.Step(`^I should receive an invalid parameter error for "([^"]*)"$`, iShouldReceiveAnInvalidParameterErrorFor)
	ctx.Step(`^no plan should be produced$`, noPlanShouldBeProduced)
}

func aSourceVideoOfSeconds(seconds float64) error {
	getPlanContext().sourceDuration = seconds
	return nil
}

func buildRequest(duration float64, start, end string) (*edit.Request, error) {
	s, err := edit.ParseTimestamp(start)
	if err != nil {
		return nil, err
	}
	e, err := edit.ParseTimestamp(end)
	if err != nil {
		return nil, err
	}
	return edit.NewRequest(duration, s, e), nil
}

func compile(start, end string, modify func(*edit.Request)) error {
	p := getPlanContext()
	req, err := buildRequest(p.sourceDuration, start, end)
	if err != nil {
		return err
	}
	if modify != nil {
		modify(req)
	}
	p.plan, p.err = edit.Compile(req)
	return nil
}

func mustCompile(start, end string, modify func(*edit.Request)) error {
	if err := compile(start, end, modify); err != nil {
		return err
	}
	if err := getPlanContext().err; err != nil {
		return fmt.Errorf("unexpected error: %v", err)
	}
	return nil
}

func iPlanATrimFromTo(start, end string) error {
	return mustCompile(start, end, nil)
}

func iPlanATrimAtSpeed(start, end string, speed float64) error {
	return mustCompile(start, end, func(r *edit.Request) { r.Speed = speed })
}

func iPlanATrimWithFadeOut(start, end string, fade float64) error {
	return mustCompile(start, end, func(r *edit.Request) { r.FadeOut = &edit.Fade{Duration: fade} })
}

func iPlanATrimRotatedBy(start, end, rotation string) error {
	rot, err := edit.ParseRotation(rotation)
	if err != nil {
		return err
	}
	return mustCompile(start, end, func(r *edit.Request) { r.Rotation = rot })
}

func iAttemptToPlanATrimFromTo(start, end string) error {
	return compile(start, end, nil)
}

func iAttemptToPlanATrimAtSpeed(start, end string, speed float64) error {
	return compile(start, end, func(r *edit.Request) { r.Speed = speed })
}

func invocationAt(n int) (edit.Invocation, error) {
	p := getPlanContext()
	if p.plan == nil {
		return edit.Invocation{}, fmt.Errorf("no plan was produced")
	}
	if n < 1 || n > len(p.plan.Invocations) {
		return edit.Invocation{}, fmt.Errorf("plan has %d invocations, no invocation %d", len(p.plan.Invocations), n)
	}
	return p.plan.Invocations[n-1], nil
}

func thePlanShouldHaveInvocations(n int) error {
	p := getPlanContext()
	if p.plan == nil {
		return fmt.Errorf("no plan was produced")
	}
	if len(p.plan.Invocations) != n {
		return fmt.Errorf("expected %d invocations, got %d", n, len(p.plan.Invocations))
	}
	return nil
}

func invocationShouldBeA(n int, kind string) error {
	inv, err := invocationAt(n)
	if err != nil {
		return err
	}
	if string(inv.Kind) != kind {
		return fmt.Errorf("expected invocation %d to be %q, got %q", n, kind, inv.Kind)
	}
	return nil
}

func invocationShouldReadTheOutputOf(n, m int) error {
	inv, err := invocationAt(n)
	if err != nil {
		return err
	}
	dep, err := invocationAt(m)
	if err != nil {
		return err
	}
	if inv.DependsOn != m-1 || inv.Input != dep.Output {
		return fmt.Errorf("invocation %d reads %q (depends on %d), want output %q of invocation %d", n, inv.Input, inv.DependsOn, dep.Output, m)
	}
	return nil
}

func invocationShouldIncludeArguments(n int, table *godog.Table) error {
	inv, err := invocationAt(n)
	if err != nil {
		return err
	}
	return argumentsInclude(inv.Args, table)
}

func argumentsInclude(args []string, table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		expectedArg := row.Cells[0].Value
		found := false
		for _, arg := range args {
			if arg == expectedArg {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("expected argument %q not found in ffmpeg call: %v", expectedArg, args)
		}
	}
	return nil
}

func theAudioFiltersShouldBe(expected string) error {
	p := getPlanContext()
	if p.plan == nil {
		return fmt.Errorf("no plan was produced")
	}
	if got := p.plan.Filters.AudioChain(); got != expected {
		return fmt.Errorf("expected audio filters %q, got %q", expected, got)
	}
	return nil
}

func theVideoFiltersShouldBe(expected string) error {
	p := getPlanContext()
	if p.plan == nil {
		return fmt.Errorf("no plan was produced")
	}
	if got := p.plan.Filters.VideoChain(); got != expected {
		return fmt.Errorf("expected video filters %q, got %q", expected, got)
	}
	return nil
}

func iShouldReceiveAnInvalidRangeError() error {
	var rangeErr *edit.InvalidRangeError
	if !errors.As(getPlanContext().err, &rangeErr) {
		return fmt.Errorf("expected an invalid range error, got: %v", getPlanContext().err)
	}
	return nil
}

func iShouldReceiveAnInvalidParameterErrorFor(param string) error {
	var paramErr *edit.InvalidParameterError
	if !errors.As(getPlanContext().err, &paramErr) {
		return fmt.Errorf("expected an invalid parameter error, got: %v", getPlanContext().err)
	}
	if paramErr.Param != param {
		return fmt.Errorf("expected invalid parameter %q, got %q", param, paramErr.Param)
	}
	return nil
}

func noPlanShouldBeProduced() error {
	if getPlanContext().plan != nil {
		return fmt.Errorf("expected no plan, got %d invocations", len(getPlanContext().plan.Invocations))
	}
	return nil
}
