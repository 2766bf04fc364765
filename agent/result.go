package agent

import (
	"fmt"

	ai "github.com/spetersoncode/stepwise"
)

// Result contains the outcome of a run. Content accessors read the final step.
type Result struct {
	// Steps is the full step history in order.
	Steps []ai.Step
	// TotalUsage is the sum of the usage of every step.
	TotalUsage ai.Usage
	// ResponseMessages are the assistant and tool messages the run appended
	// to the conversation. Append them to the input to continue it.
	ResponseMessages []ai.Message
	// Context is the caller context value after the last update.
	Context any

	output Output
}

// FinalStep returns the last step, if any.
func (r *Result) FinalStep() (ai.Step, bool) {
	if r == nil || len(r.Steps) == 0 {
		return ai.Step{}, false
	}
	return r.Steps[len(r.Steps)-1], true
}

func (r *Result) last() ai.Step {
	s, _ := r.FinalStep()
	return s
}

// Content returns the content of the final step.
func (r *Result) Content() []ai.ContentPart { return r.last().Content }

// Text returns the text of the final step.
func (r *Result) Text() string { return r.last().Text() }

// Reasoning returns the reasoning text of the final step.
func (r *Result) Reasoning() string { return r.last().Reasoning() }

// ToolCalls returns the tool calls of the final step.
func (r *Result) ToolCalls() []ai.ToolCall { return r.last().ToolCalls() }

// ToolResults returns the tool results of the final step.
func (r *Result) ToolResults() []ai.ToolResult { return r.last().ToolResults() }

// ToolErrors returns the tool errors of the final step.
func (r *Result) ToolErrors() []ai.ToolError { return r.last().ToolErrors() }

// ApprovalRequests returns the approval requests left pending by the final step.
func (r *Result) ApprovalRequests() []ai.ApprovalRequest { return r.last().ApprovalRequests() }

// Files returns the files generated in the final step.
func (r *Result) Files() []ai.File { return r.last().Files() }

// Sources returns the sources cited in the final step.
func (r *Result) Sources() []ai.Source { return r.last().Sources() }

// FinishReason returns the finish reason of the final step.
func (r *Result) FinishReason() ai.FinishReason { return r.last().FinishReason }

// Usage returns the usage of the final step. See TotalUsage for the run.
func (r *Result) Usage() ai.Usage { return r.last().Usage }

// Warnings returns the warnings of the final step.
func (r *Result) Warnings() []ai.Warning { return r.last().Warnings }

// Response returns the response metadata of the final step.
func (r *Result) Response() ai.ResponseMetadata { return r.last().Response }

// StepCount returns the number of steps taken.
func (r *Result) StepCount() int {
	if r == nil {
		return 0
	}
	return len(r.Steps)
}

// Output parses the structured output configured with WithOutput from the
// final step's text.
func (r *Result) Output() (any, error) {
	if r == nil || r.output == nil {
		return nil, ai.ErrNoOutputSpecified
	}
	last, ok := r.FinalStep()
	if !ok || last.FinishReason == ai.FinishToolCalls {
		return nil, ai.ErrNoOutputGenerated
	}
	v, err := r.output.Parse(last.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ai.ErrNoOutputGenerated, err)
	}
	return v, nil
}

// OutputAs returns the structured output as T.
func OutputAs[T any](r *Result) (T, error) {
	var zero T
	v, err := r.Output()
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: output is %T, not %T", ai.ErrNoOutputGenerated, v, zero)
	}
	return out, nil
}
