package telemetry

import (
	"time"

	ai "github.com/spetersoncode/stepwise"
)

// Info identifies the run and model an event belongs to.
type Info struct {
	RunID    string
	Provider string
	ModelID  string
	// FunctionID and Metadata are the caller-supplied telemetry settings.
	FunctionID string
	Metadata   map[string]any
	// Context is the caller context value at the time of the event.
	Context any
}

// RunStartEvent fires once before the first step.
type RunStartEvent struct {
	Info
	System   string
	Messages []ai.Message
	Tools    []string
	Start    time.Time
}

// StepStartEvent fires before each model call.
type StepStartEvent struct {
	Info
	Step        int
	Messages    []ai.Message
	ActiveTools []string
	ToolChoice  ai.ToolChoice
	// PreviousSteps are the steps completed so far.
	PreviousSteps []ai.Step
}

// ToolCallStartEvent fires before a tool executes.
type ToolCallStartEvent struct {
	Info
	Step     int
	Call     ai.ToolCall
	Messages []ai.Message
}

// ToolCallFinishEvent fires after a tool executes. Exactly one of Output and
// Err is meaningful.
type ToolCallFinishEvent struct {
	Info
	Step     int
	Call     ai.ToolCall
	Duration time.Duration
	Output   any
	Err      error
}

// Success reports whether the tool call produced an output.
func (e *ToolCallFinishEvent) Success() bool {
	return e.Err == nil
}

// StepFinishEvent fires after a step is complete and appended.
type StepFinishEvent struct {
	Info
	Step ai.Step
}

// RunFinishEvent fires once when the run ends, successfully or not.
type RunFinishEvent struct {
	Info
	Steps      []ai.Step
	TotalUsage ai.Usage
	Duration   time.Duration
	// Err is the error the run ended with, if any.
	Err error
}

// FinishReason returns the finish reason of the last step.
func (e *RunFinishEvent) FinishReason() ai.FinishReason {
	if len(e.Steps) == 0 {
		return ""
	}
	return e.Steps[len(e.Steps)-1].FinishReason
}
