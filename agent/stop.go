package agent

import (
	"slices"

	ai "github.com/spetersoncode/stepwise"
)

// DefaultMaxSteps is the step limit applied when no stop condition is configured.
const DefaultMaxSteps = 10

// StopCondition decides after each step whether the run should end.
// It receives every step completed so far.
type StopCondition func(steps []ai.Step) bool

// StepCountIs stops the run once n steps have completed.
func StepCountIs(n int) StopCondition {
	return func(steps []ai.Step) bool {
		return len(steps) >= n
	}
}

// HasToolCall stops the run once any step has called one of the named tools.
// Conditions run after every step, so checking the newest step is enough.
func HasToolCall(names ...string) StopCondition {
	return func(steps []ai.Step) bool {
		if len(steps) == 0 {
			return false
		}
		for _, call := range steps[len(steps)-1].ToolCalls() {
			if slices.Contains(names, call.Name) {
				return true
			}
		}
		return false
	}
}

// stopConditionMet evaluates every condition exactly once, even after one
// has already reported true.
func stopConditionMet(conds []StopCondition, steps []ai.Step) bool {
	met := false
	for _, cond := range conds {
		if cond(steps) {
			met = true
		}
	}
	return met
}
