package tool

import (
	"context"
	"encoding/json"
	"iter"

	ai "github.com/spetersoncode/stepwise"
)

// CallOptions is passed to every tool invocation.
type CallOptions struct {
	// ToolCallID identifies the call being executed.
	ToolCallID string
	// Messages is the conversation sent to the model in the step that
	// produced the call.
	Messages []ai.Message
	// Context is the caller-supplied context value of the run. It is shared
	// by every tool in a step and is not synchronized.
	Context any
}

// ExecuteFunc runs a tool with its validated input.
type ExecuteFunc func(ctx context.Context, input any, opts CallOptions) (any, error)

// StreamFunc runs a tool that reports preliminary outputs. Each yielded value
// replaces the previous one; the last value is the final output.
type StreamFunc func(ctx context.Context, input any, opts CallOptions) iter.Seq2[any, error]

// ApprovalFunc decides whether a call must be approved before it runs.
type ApprovalFunc func(ctx context.Context, input any, opts CallOptions) (bool, error)

// Always requires approval for every call.
func Always(context.Context, any, CallOptions) (bool, error) { return true, nil }

// ApproveIf requires approval when pred reports true for the decoded input.
func ApproveIf[T any](pred func(T) bool) ApprovalFunc {
	return func(_ context.Context, input any, _ CallOptions) (bool, error) {
		args, err := Decode[T](input)
		if err != nil {
			return false, err
		}
		return pred(args), nil
	}
}

// ContextUpdate may be returned by a tool to replace the run's context value.
// Output is what the model sees.
type ContextUpdate struct {
	Output  any
	Context any
}

// Tool is an executable capability offered to the model.
type Tool struct {
	// Name is the unique identifier for the tool.
	Name string
	// Description explains what the tool does.
	Description string
	// Parameters is the JSON Schema for the tool input.
	Parameters json.RawMessage
	// Dynamic marks tools whose input type is not known statically, such as
	// tools discovered at runtime from an MCP server.
	Dynamic bool
	// NeedsApproval, when set, gates execution behind an approval request.
	NeedsApproval ApprovalFunc
	// InputEditable allows approval responses to replace the call's input.
	InputEditable bool

	// Execute runs the tool. When neither Execute nor Stream is set, calls
	// are surfaced to the caller and the run halts.
	Execute ExecuteFunc
	// Stream runs the tool with preliminary outputs. It takes precedence
	// over Execute.
	Stream StreamFunc

	ProviderOptions map[string]any
}

// Definition returns the model-facing description of the tool.
func (t Tool) Definition() ai.ToolDefinition {
	return ai.ToolDefinition{
		Name:            t.Name,
		Description:     t.Description,
		Parameters:      t.Parameters,
		ProviderOptions: t.ProviderOptions,
	}
}

// Executable reports whether the tool can run locally.
func (t Tool) Executable() bool {
	return t.Execute != nil || t.Stream != nil
}

// Decode converts a decoded JSON input into T.
func Decode[T any](input any) (T, error) {
	var args T
	if v, ok := input.(T); ok {
		return v, nil
	}
	data, err := json.Marshal(input)
	if err != nil {
		return args, err
	}
	err = json.Unmarshal(data, &args)
	return args, err
}
