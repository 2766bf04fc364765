package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/stepwise"
)

type stubMessagesClient struct {
	lastParams sdk.MessageNewParams
	resp       *sdk.Message
	err        error
}

func (s *stubMessagesClient) New(_ context.Context, body sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	s.lastParams = body
	return s.resp, s.err
}

func textMessage(text string) *sdk.Message {
	return &sdk.Message{
		ID:         "msg_1",
		Model:      "claude-sonnet-4-5",
		Content:    []sdk.ContentBlockUnion{{Type: "text", Text: text}},
		StopReason: sdk.StopReasonEndTurn,
		Usage:      sdk.Usage{InputTokens: 10, OutputTokens: 5, CacheReadInputTokens: 2},
	}
}

func TestGenerate_Text(t *testing.T) {
	stub := &stubMessagesClient{resp: textMessage("world")}
	model := New(WithClient(stub), WithModel(ClaudeHaiku45))

	assert.Equal(t, "anthropic", model.Provider())
	assert.Equal(t, ClaudeHaiku45, model.ModelID())

	resp, err := model.Generate(context.Background(), []ai.Message{
		ai.NewSystemMessage("be brief"),
		ai.NewUserMessage("hello"),
	}, ai.WithTemperature(0.3))
	require.NoError(t, err)

	assert.Equal(t, "world", resp.Text())
	assert.Equal(t, ai.FinishStop, resp.FinishReason)
	assert.Equal(t, "end_turn", resp.RawFinishReason)
	assert.Equal(t, ai.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15, CachedInputTokens: 2}, resp.Usage)
	assert.Equal(t, "msg_1", resp.Metadata.ID)

	params := stub.lastParams
	assert.Equal(t, sdk.Model(ClaudeHaiku45), params.Model)
	assert.Equal(t, int64(DefaultMaxTokens), params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "be brief", params.System[0].Text)
	require.Len(t, params.Messages, 1)
	assert.Equal(t, "hello", params.Messages[0].Content[0].OfText.Text)
	assert.Empty(t, params.Tools)
}

func TestGenerate_ToolRoundTrip(t *testing.T) {
	stub := &stubMessagesClient{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: "Let me add."},
			{Type: "tool_use", ID: "tu_1", Name: "add", Input: json.RawMessage(`{"a":1,"b":2}`)},
		},
		StopReason: sdk.StopReasonToolUse,
	}}
	model := New(WithClient(stub))

	history := []ai.Message{
		ai.NewUserMessage("1+2?"),
		{Role: ai.RoleAssistant, Parts: []ai.ContentPart{
			ai.NewToolCallPart(ai.ToolCall{ID: "tu_0", Name: "add", Arguments: `{"a":0,"b":0}`}),
			ai.NewApprovalRequestPart(ai.ApprovalRequest{ApprovalID: "ap"}),
		}},
		ai.NewToolMessage(
			ai.NewToolResultPart(ai.ToolResult{ToolCallID: "tu_0", ToolName: "add", Output: ai.OutputOf(0)}),
			ai.NewApprovalResponsePart(ai.Approve("ap")),
		),
	}
	tools := []ai.ToolDefinition{{
		Name:        "add",
		Description: "Add numbers",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"a":{"type":"number"},"b":{"type":"number"}},"required":["a","b"]}`),
	}}

	resp, err := model.Generate(context.Background(), history, ai.WithTools(tools), ai.WithToolChoice(ai.ToolChoiceRequired))
	require.NoError(t, err)

	assert.Equal(t, ai.FinishToolCalls, resp.FinishReason)
	calls := resp.ToolCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, ai.ToolCall{ID: "tu_1", Name: "add", Arguments: `{"a":1,"b":2}`}, calls[0])

	params := stub.lastParams
	require.Len(t, params.Tools, 1)
	assert.Equal(t, "add", params.Tools[0].OfTool.Name)
	assert.Equal(t, []string{"a", "b"}, params.Tools[0].OfTool.InputSchema.Required)
	assert.NotNil(t, params.ToolChoice.OfAny)

	require.Len(t, params.Messages, 3)
	use := params.Messages[1].Content
	require.Len(t, use, 1)
	assert.Equal(t, "tu_0", use[0].OfToolUse.ID)
	result := params.Messages[2].Content
	require.Len(t, result, 1)
	assert.Equal(t, "tu_0", result[0].OfToolResult.ToolUseID)
}

func TestGenerate_StructuredOutput(t *testing.T) {
	stub := &stubMessagesClient{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "tool_use", ID: "tu_1", Name: jsonResponseToolName, Input: json.RawMessage(`{"city":"Paris"}`)},
		},
		StopReason: sdk.StopReasonToolUse,
	}}
	model := New(WithClient(stub))

	resp, err := model.Generate(context.Background(), []ai.Message{ai.NewUserMessage("capital of France")},
		ai.WithResponseSchema(&ai.ResponseSchema{Name: "output", Schema: json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`)}))
	require.NoError(t, err)

	assert.Equal(t, `{"city":"Paris"}`, resp.Text())
	assert.Empty(t, resp.ToolCalls())
	assert.Equal(t, ai.FinishStop, resp.FinishReason)
	require.NotNil(t, stub.lastParams.ToolChoice.OfTool)
	assert.Equal(t, jsonResponseToolName, stub.lastParams.ToolChoice.OfTool.Name)
}

func TestGenerate_Thinking(t *testing.T) {
	stub := &stubMessagesClient{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "thinking", Thinking: "hmm", Signature: "sig"},
			{Type: "text", Text: "42"},
		},
		StopReason: sdk.StopReasonEndTurn,
	}}
	model := New(WithClient(stub))

	resp, err := model.Generate(context.Background(), []ai.Message{ai.NewUserMessage("q")},
		ai.WithMaxTokens(8000), ai.WithProviderOptions(map[string]any{"thinking_budget": 2048}))
	require.NoError(t, err)

	require.Len(t, resp.Content, 2)
	assert.Equal(t, ai.PartReasoning, resp.Content[0].Type)
	assert.Equal(t, "sig", resp.Content[0].ProviderMetadata["signature"])
	assert.Equal(t, int64(8000), stub.lastParams.MaxTokens)
	assert.NotNil(t, stub.lastParams.Thinking.OfEnabled)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "3")
		apiErr := &sdk.Error{
			StatusCode: 429,
			Request:    &http.Request{Method: http.MethodPost, URL: &url.URL{Path: "/v1/messages"}},
			Response:   &http.Response{StatusCode: 429, Header: header},
		}
		model := New(WithClient(&stubMessagesClient{err: apiErr}))

		_, err := model.Generate(context.Background(), []ai.Message{ai.NewUserMessage("hi")})
		require.Error(t, err)
		assert.True(t, ai.IsTransient(err))
		assert.Equal(t, 429, ai.StatusCodeOf(err))
		assert.Equal(t, int64(3), int64(ai.RetryAfterOf(err).Seconds()))
	})

	t.Run("network error passes through", func(t *testing.T) {
		netErr := errors.New("connection reset")
		model := New(WithClient(&stubMessagesClient{err: netErr}))
		_, err := model.Generate(context.Background(), []ai.Message{ai.NewUserMessage("hi")})
		assert.Same(t, netErr, err)
	})

	t.Run("no messages", func(t *testing.T) {
		model := New(WithClient(&stubMessagesClient{}))
		_, err := model.Generate(context.Background(), []ai.Message{ai.NewSystemMessage("only system")})
		assert.Error(t, err)
	})
}
