package agent

import (
	"errors"
	"testing"

	ai "github.com/spetersoncode/stepwise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleContent(t *testing.T) {
	local := ai.ToolCall{ID: "l1", Name: "calc", Input: map[string]any{"a": 1.0}}
	remote := ai.ToolCall{ID: "r1", Name: "web_search", ProviderExecuted: true, Input: map[string]any{"q": "go"}}

	content := []ai.ContentPart{
		ai.NewReasoningPart("thinking"),
		ai.NewTextPart("Let me check."),
		ai.NewToolCallPart(ai.ToolCall{ID: "l1", Name: "calc", Arguments: `{"a":1}`}),
		ai.NewToolCallPart(ai.ToolCall{ID: "r1", Name: "web_search", Arguments: `{"q":"go"}`, ProviderExecuted: true}),
		ai.NewToolResultPart(ai.ToolResult{ToolCallID: "r1", ToolName: "web_search", Output: "hits"}),
	}
	outcomes := []outcome{
		{part: ai.NewToolResultPart(ai.ToolResult{ToolCallID: "l1", ToolName: "calc", Output: 1})},
		{},
	}

	got := assembleContent(content, []ai.ToolCall{local, remote}, outcomes)

	assert.Equal(t, []ai.PartType{
		ai.PartReasoning, ai.PartText, ai.PartToolCall, ai.PartToolCall, ai.PartToolResult, ai.PartToolResult,
	}, partTypes(got))
	assert.Equal(t, local.Input, got[2].ToolCall.Input)
	assert.True(t, got[4].ToolResult.ProviderExecuted)
	assert.Equal(t, remote.Input, got[4].ToolResult.Input)
	assert.False(t, got[5].ToolResult.ProviderExecuted)
}

func TestToResponseMessages(t *testing.T) {
	call := ai.ToolCall{ID: "1", Name: "calc"}
	content := []ai.ContentPart{
		ai.NewTextPart(""),
		ai.NewTextPart("Working."),
		{Type: ai.PartSource, Source: &ai.Source{ID: "s", SourceType: "url", URL: "https://go.dev"}},
		ai.NewToolCallPart(call),
		ai.NewToolCallPart(ai.ToolCall{ID: "2", Name: "calc"}),
		ai.NewToolCallPart(ai.ToolCall{ID: "3", Name: "rm"}),
		ai.NewToolResultPart(ai.ToolResult{ToolCallID: "p", ToolName: "search", Output: "x", ProviderExecuted: true}),
		ai.NewToolResultPart(ai.ToolResult{ToolCallID: "1", ToolName: "calc", Output: "ok"}),
		ai.NewToolErrorPart(ai.NewToolError(ai.ToolCall{ID: "2", Name: "calc"}, errors.New("bad"))),
		ai.NewApprovalRequestPart(ai.ApprovalRequest{ApprovalID: "a", ToolCall: ai.ToolCall{ID: "3", Name: "rm"}}),
	}

	msgs := toResponseMessages(content)
	require.Len(t, msgs, 2)

	assistant := msgs[0]
	assert.Equal(t, ai.RoleAssistant, assistant.Role)
	assert.Equal(t, []ai.PartType{
		ai.PartText, ai.PartToolCall, ai.PartToolCall, ai.PartToolCall, ai.PartToolResult, ai.PartApprovalRequest,
	}, partTypes(assistant.Parts))

	toolMsg := msgs[1]
	assert.Equal(t, ai.RoleTool, toolMsg.Role)
	require.Len(t, toolMsg.Parts, 2)
	assert.Equal(t, ai.ToolOutput{Type: ai.OutputText, Value: "ok"}, toolMsg.Parts[0].ToolResult.Output)
	assert.Equal(t, ai.ToolOutput{Type: ai.OutputErrorText, Value: "bad"}, toolMsg.Parts[1].ToolResult.Output)
}

func TestToResponseMessagesEmpty(t *testing.T) {
	assert.Empty(t, toResponseMessages(nil))
	assert.Empty(t, toResponseMessages([]ai.ContentPart{ai.NewTextPart("")}))
}
