package stepwise

import (
	"encoding/json"
	"errors"
	"strings"
)

// ToolDefinition describes a tool to the model.
type ToolDefinition struct {
	// Name is the unique identifier for the tool.
	Name string
	// Description explains what the tool does (helps the model decide when to use it).
	Description string
	// Parameters is a JSON Schema object defining the function parameters.
	Parameters json.RawMessage
	// ProviderOptions carries provider-specific routing metadata.
	ProviderOptions map[string]any
}

// ToolCall represents a request from the model to invoke a tool.
type ToolCall struct {
	// ID is a unique identifier for this tool call (used to match results).
	ID string `json:"id"`
	// Name is the name of the tool to invoke.
	Name string `json:"name"`
	// Arguments is the raw JSON argument string produced by the model.
	Arguments string `json:"arguments"`
	// Input is the decoded argument value. It is nil until the call is parsed.
	Input any `json:"input,omitempty"`

	// Dynamic marks tools whose name was not known when the tool set was defined.
	Dynamic bool `json:"dynamic,omitempty"`
	// ProviderExecuted marks calls the provider resolved itself.
	ProviderExecuted bool `json:"providerExecuted,omitempty"`
	// Invalid marks calls whose tool is unknown or whose input failed validation.
	Invalid bool `json:"invalid,omitempty"`
	// Err holds the parse or validation failure of an invalid call.
	Err error `json:"-"`
}

// ToolResult is the successful outcome of a tool call.
type ToolResult struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName"`
	Input      any    `json:"input,omitempty"`
	// Output is the tool's return value. In tool messages it may hold a
	// ToolOutput describing how the value is presented to the model.
	Output any `json:"output"`

	ProviderExecuted bool `json:"providerExecuted,omitempty"`
	Dynamic          bool `json:"dynamic,omitempty"`
	Preliminary      bool `json:"preliminary,omitempty"`
}

// ToolError is the failed outcome of a tool call.
type ToolError struct {
	ToolCallID string `json:"toolCallId"`
	ToolName   string `json:"toolName"`
	Input      any    `json:"input,omitempty"`
	// Message is the error text sent back to the model.
	Message string `json:"error"`
	// Err is the original error value, kept for the caller's inspection.
	Err error `json:"-"`

	ProviderExecuted bool `json:"providerExecuted,omitempty"`
	Dynamic          bool `json:"dynamic,omitempty"`
}

// NewToolError builds a ToolError for call from err.
func NewToolError(call ToolCall, err error) ToolError {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return ToolError{
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Input:      call.Input,
		Message:    msg,
		Err:        err,
		Dynamic:    call.Dynamic,
	}
}

// Error returns the error message.
func (e ToolError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the original error.
func (e ToolError) Unwrap() error {
	return e.Err
}

// OutputType selects how a tool output is presented to the model.
type OutputType string

const (
	OutputText            OutputType = "text"
	OutputJSON            OutputType = "json"
	OutputErrorText       OutputType = "error-text"
	OutputErrorJSON       OutputType = "error-json"
	OutputExecutionDenied OutputType = "execution-denied"
)

// ToolOutput is the model-facing form of a tool outcome.
type ToolOutput struct {
	Type   OutputType `json:"type"`
	Value  any        `json:"value,omitempty"`
	Reason string     `json:"reason,omitempty"`
}

// IsError reports whether the output represents a failure or denial.
func (o ToolOutput) IsError() bool {
	return o.Type == OutputErrorText || o.Type == OutputErrorJSON || o.Type == OutputExecutionDenied
}

// String renders the output as text for providers that only accept strings.
func (o ToolOutput) String() string {
	switch o.Type {
	case OutputExecutionDenied:
		if o.Reason != "" {
			return o.Reason
		}
		return "Tool execution denied."
	case OutputText, OutputErrorText:
		if s, ok := o.Value.(string); ok {
			return s
		}
	}
	data, err := json.Marshal(o.Value)
	if err != nil {
		return ""
	}
	return string(data)
}

// DeniedOutput builds the output recorded for a denied approval.
func DeniedOutput(reason string) ToolOutput {
	return ToolOutput{Type: OutputExecutionDenied, Reason: reason}
}

// OutputOf normalizes a tool result value into a ToolOutput. Strings become
// text, ToolOutput values pass through, everything else is JSON.
func OutputOf(v any) ToolOutput {
	switch out := v.(type) {
	case ToolOutput:
		return out
	case *ToolOutput:
		if out != nil {
			return *out
		}
		return ToolOutput{Type: OutputJSON}
	case string:
		return ToolOutput{Type: OutputText, Value: out}
	default:
		return ToolOutput{Type: OutputJSON, Value: out}
	}
}

// ErrorOutputOf builds the error-typed output for a failed call.
func ErrorOutputOf(e ToolError) ToolOutput {
	return ToolOutput{Type: OutputErrorText, Value: e.Error()}
}

// ApprovalRequest asks the caller to approve a tool call before it runs.
type ApprovalRequest struct {
	ApprovalID string   `json:"approvalId"`
	ToolCall   ToolCall `json:"toolCall"`
	// InputEditable reports whether the response may carry edited input.
	InputEditable bool `json:"inputEditable,omitempty"`
}

// ApprovalResponse resolves an ApprovalRequest.
type ApprovalResponse struct {
	ApprovalID string `json:"approvalId"`
	Approved   bool   `json:"approved"`
	Reason     string `json:"reason,omitempty"`
	// EditedInput replaces the call's input when the tool allows it.
	EditedInput json.RawMessage `json:"editedInput,omitempty"`
}

// Approve builds an approving response.
func Approve(approvalID string) ApprovalResponse {
	return ApprovalResponse{ApprovalID: approvalID, Approved: true}
}

// Deny builds a denying response with an optional reason.
func Deny(approvalID, reason string) ApprovalResponse {
	return ApprovalResponse{ApprovalID: approvalID, Approved: false, Reason: reason}
}

// ToolChoice controls how the model uses tools. Besides the three modes it
// may name a specific tool, see SpecificTool.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide when to use tools (default).
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone disables tool use for the request.
	ToolChoiceNone ToolChoice = "none"
	// ToolChoiceRequired forces the model to use a tool.
	ToolChoiceRequired ToolChoice = "required"
)

// SpecificTool forces the model to call the named tool.
func SpecificTool(name string) ToolChoice {
	return ToolChoice("tool:" + name)
}

// Tool returns the forced tool name, if any.
func (c ToolChoice) Tool() (string, bool) {
	name, ok := strings.CutPrefix(string(c), "tool:")
	return name, ok && name != ""
}

// errUnknownOutput is returned when a tool result value cannot be encoded.
var errUnknownOutput = errors.New("tool output is not JSON encodable")

// EncodeOutput renders v as the JSON text providers expect in a tool result.
func EncodeOutput(v any) (string, error) {
	out := OutputOf(v)
	if out.Type == OutputText || out.Type == OutputErrorText || out.Type == OutputExecutionDenied {
		return out.String(), nil
	}
	data, err := json.Marshal(out.Value)
	if err != nil {
		return "", errors.Join(errUnknownOutput, err)
	}
	return string(data), nil
}
