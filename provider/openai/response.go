package openai

import (
	"time"

	sdk "github.com/openai/openai-go"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

var finishReasons = map[string]ai.FinishReason{
	"stop":           ai.FinishStop,
	"length":         ai.FinishLength,
	"tool_calls":     ai.FinishToolCalls,
	"function_call":  ai.FinishToolCalls,
	"content_filter": ai.FinishContentFilter,
}

func translateResponse(c *sdk.ChatCompletion) *ai.Response {
	choice := c.Choices[0]
	resp := &ai.Response{
		RawFinishReason: choice.FinishReason,
		FinishReason:    convert.FinishReason(choice.FinishReason, finishReasons),
		Usage: ai.Usage{
			InputTokens:       int(c.Usage.PromptTokens),
			OutputTokens:      int(c.Usage.CompletionTokens),
			TotalTokens:       int(c.Usage.TotalTokens),
			CachedInputTokens: int(c.Usage.PromptTokensDetails.CachedTokens),
			ReasoningTokens:   int(c.Usage.CompletionTokensDetails.ReasoningTokens),
		},
		Metadata: ai.ResponseMetadata{
			ID:        c.ID,
			ModelID:   c.Model,
			Timestamp: time.Unix(c.Created, 0),
		},
	}

	msg := choice.Message
	if msg.Content != "" {
		resp.Content = append(resp.Content, ai.NewTextPart(msg.Content))
	}
	if msg.Refusal != "" {
		resp.Warnings = append(resp.Warnings, ai.Warning{Type: "refusal", Message: msg.Refusal})
	}
	for _, tc := range msg.ToolCalls {
		resp.Content = append(resp.Content, ai.NewToolCallPart(ai.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}))
	}
	return resp
}
