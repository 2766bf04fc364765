package convert

import (
	"errors"
	"net/http"
	"testing"
	"time"

	ai "github.com/spetersoncode/stepwise"
	"github.com/stretchr/testify/assert"
)

func TestToolResultText(t *testing.T) {
	text, isErr := ToolResultText(ai.ToolResult{Output: ai.OutputOf(map[string]any{"sum": 3})})
	assert.JSONEq(t, `{"sum":3}`, text)
	assert.False(t, isErr)

	text, isErr = ToolResultText(ai.ToolResult{Output: ai.DeniedOutput("no")})
	assert.Equal(t, "no", text)
	assert.True(t, isErr)

	text, isErr = ToolResultText(ai.ToolResult{Output: ai.ErrorOutputOf(ai.NewToolError(ai.ToolCall{}, errors.New("boom")))})
	assert.Equal(t, "boom", text)
	assert.True(t, isErr)
}

func TestToolResultValue(t *testing.T) {
	type sum struct {
		Sum int `json:"sum"`
	}
	v, isErr := ToolResultValue(ai.ToolResult{Output: ai.OutputOf(sum{Sum: 3})})
	assert.Equal(t, map[string]any{"sum": 3.0}, v)
	assert.False(t, isErr)

	v, _ = ToolResultValue(ai.ToolResult{Output: "plain"})
	assert.Equal(t, map[string]any{"result": "plain"}, v)

	v, isErr = ToolResultValue(ai.ToolResult{Output: ai.DeniedOutput("")})
	assert.Equal(t, map[string]any{"error": "Tool execution denied."}, v)
	assert.True(t, isErr)
}

func TestArguments(t *testing.T) {
	assert.Equal(t, map[string]any{"a": 1.0}, Arguments(ai.ToolCall{Arguments: `{"a":1}`}))
	assert.Equal(t, map[string]any{}, Arguments(ai.ToolCall{Arguments: `not json`}))
	assert.Equal(t, map[string]any{"b": true}, Arguments(ai.ToolCall{Input: map[string]any{"b": true}}))
	assert.Equal(t, "{}", ArgumentsJSON(ai.ToolCall{}))
}

func TestSchema(t *testing.T) {
	assert.Equal(t, map[string]any{"type": "object"}, Schema(nil))
	s := Schema([]byte(`{"type":"object","properties":{"q":{"type":"string"}}}`))
	assert.Contains(t, s, "properties")
}

func TestRetryAfter(t *testing.T) {
	assert.Zero(t, RetryAfter(nil))
	h := http.Header{}
	h.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, RetryAfter(h))

	h.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	assert.Greater(t, RetryAfter(h), 59*time.Minute)

	h.Set("Retry-After", "soon")
	assert.Zero(t, RetryAfter(h))
}

func TestMessageSplitting(t *testing.T) {
	assistant := ai.Message{Role: ai.RoleAssistant, Content: "hi", Parts: []ai.ContentPart{
		ai.NewReasoningPart(""),
		ai.NewToolCallPart(ai.ToolCall{ID: "1", Name: "calc"}),
		ai.NewApprovalRequestPart(ai.ApprovalRequest{ApprovalID: "a"}),
		ai.NewToolResultPart(ai.ToolResult{ToolCallID: "p", ProviderExecuted: true}),
	}}
	parts := Assistant(assistant)
	assert.Len(t, parts, 3)
	assert.Equal(t, ai.PartText, parts[0].Type)

	tool := ai.NewToolMessage(
		ai.NewToolResultPart(ai.ToolResult{ToolCallID: "1", Output: "ok"}),
		ai.NewToolErrorPart(ai.NewToolError(ai.ToolCall{ID: "2"}, errors.New("bad"))),
		ai.NewApprovalResponsePart(ai.Approve("a")),
	)
	results := ToolResults(tool)
	assert.Len(t, results, 2)
	assert.True(t, ai.OutputOf(results[1].Output).IsError())
}

func TestFinishReason(t *testing.T) {
	table := map[string]ai.FinishReason{"end_turn": ai.FinishStop}
	assert.Equal(t, ai.FinishStop, FinishReason("end_turn", table))
	assert.Equal(t, ai.FinishOther, FinishReason("weird", table))
	assert.Equal(t, ai.FinishUnknown, FinishReason("", table))
}
