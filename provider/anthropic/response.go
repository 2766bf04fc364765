package anthropic

import (
	"encoding/json"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

var stopReasons = map[string]ai.FinishReason{
	"end_turn":      ai.FinishStop,
	"stop_sequence": ai.FinishStop,
	"max_tokens":    ai.FinishLength,
	"tool_use":      ai.FinishToolCalls,
	"refusal":       ai.FinishContentFilter,
	"pause_turn":    ai.FinishOther,
}

func translateResponse(msg *sdk.Message, structured bool) *ai.Response {
	resp := &ai.Response{
		RawFinishReason: string(msg.StopReason),
		FinishReason:    convert.FinishReason(string(msg.StopReason), stopReasons),
		Usage: ai.Usage{
			InputTokens:       int(msg.Usage.InputTokens),
			OutputTokens:      int(msg.Usage.OutputTokens),
			TotalTokens:       int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
			CachedInputTokens: int(msg.Usage.CacheReadInputTokens),
			CacheWriteTokens:  int(msg.Usage.CacheCreationInputTokens),
		},
		Metadata: ai.ResponseMetadata{
			ID:        msg.ID,
			ModelID:   string(msg.Model),
			Timestamp: time.Now(),
		},
	}

	calls := 0
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			if block.Text != "" {
				resp.Content = append(resp.Content, ai.NewTextPart(block.Text))
			}
		case "thinking":
			part := ai.NewReasoningPart(block.Thinking)
			part.ProviderMetadata = map[string]any{"signature": block.Signature}
			resp.Content = append(resp.Content, part)
		case "tool_use":
			if structured && block.Name == jsonResponseToolName {
				resp.Content = append(resp.Content, ai.NewTextPart(string(block.Input)))
				continue
			}
			calls++
			resp.Content = append(resp.Content, ai.NewToolCallPart(ai.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			}))
		case "server_tool_use":
			resp.Content = append(resp.Content, ai.NewToolCallPart(ai.ToolCall{
				ID:               block.ID,
				Name:             block.Name,
				Arguments:        string(block.Input),
				ProviderExecuted: true,
			}))
		case "web_search_tool_result":
			var raw struct {
				ToolUseID string          `json:"tool_use_id"`
				Content   json.RawMessage `json:"content"`
			}
			if err := json.Unmarshal([]byte(block.RawJSON()), &raw); err != nil {
				continue
			}
			var output any
			_ = json.Unmarshal(raw.Content, &output)
			resp.Content = append(resp.Content, ai.NewToolResultPart(ai.ToolResult{
				ToolCallID:       raw.ToolUseID,
				ToolName:         "web_search",
				Output:           output,
				ProviderExecuted: true,
			}))
		}
	}

	// A forced structured-output call is the final answer, not a tool round.
	if resp.FinishReason == ai.FinishToolCalls && calls == 0 {
		resp.FinishReason = ai.FinishStop
	}
	return resp
}
