package stepwise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepAccessors(t *testing.T) {
	call := ToolCall{ID: "c1", Name: "weather"}
	step := Step{Content: []ContentPart{
		NewReasoningPart("let me check "),
		NewReasoningPart("the weather"),
		NewTextPart("Checking"),
		{Type: PartSource, Source: &Source{ID: "s1", SourceType: "url", URL: "https://example.com"}},
		NewToolCallPart(call),
		NewToolResultPart(ToolResult{ToolCallID: "c1", ToolName: "weather", Output: "sunny"}),
		NewToolErrorPart(ToolError{ToolCallID: "c2", Message: "boom"}),
		NewApprovalRequestPart(ApprovalRequest{ApprovalID: "a1", ToolCall: call}),
		NewFilePart("aGk=", "text/plain"),
	}}

	assert.Equal(t, "Checking", step.Text())
	assert.Equal(t, "let me check the weather", step.Reasoning())
	assert.Equal(t, []ToolCall{call}, step.ToolCalls())
	require.Len(t, step.ToolResults(), 1)
	assert.Equal(t, "sunny", step.ToolResults()[0].Output)
	require.Len(t, step.ToolErrors(), 1)
	require.Len(t, step.ApprovalRequests(), 1)
	assert.Equal(t, "a1", step.ApprovalRequests()[0].ApprovalID)
	assert.Len(t, step.Files(), 1)
	assert.Len(t, step.Sources(), 1)
}

func TestResponseAccessors(t *testing.T) {
	var nilResp *Response
	assert.Empty(t, nilResp.Text())
	assert.Nil(t, nilResp.ToolCalls())

	resp := &Response{Content: []ContentPart{NewTextPart("a"), NewToolCallPart(ToolCall{ID: "c1"}), NewTextPart("b")}}
	assert.Equal(t, "ab", resp.Text())
	assert.Len(t, resp.ToolCalls(), 1)
}

func TestApplyOptions(t *testing.T) {
	opts := ApplyOptions(
		WithMaxTokens(100),
		WithTemperature(0.5),
		WithToolChoice(ToolChoiceRequired),
		WithTools([]ToolDefinition{{Name: "weather"}}),
		WithProviderOptions(map[string]any{"k": "v"}),
	)

	assert.Equal(t, 100, opts.MaxTokens)
	require.NotNil(t, opts.Temperature)
	assert.InDelta(t, 0.5, *opts.Temperature, 1e-9)
	assert.Equal(t, ToolChoiceRequired, opts.ToolChoice)
	assert.Len(t, opts.Tools, 1)
	assert.Equal(t, "v", opts.ProviderOptions["k"])
}
