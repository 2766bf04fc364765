package anthropic

import (
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

func convertMessages(messages []ai.Message) ([]sdk.MessageParam, []sdk.TextBlockParam, []ai.Warning) {
	var result []sdk.MessageParam
	var system []sdk.TextBlockParam
	var warnings []ai.Warning

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			// The API rejects empty text blocks.
			if text := msg.Text(); text != "" {
				system = append(system, sdk.TextBlockParam{Text: text})
			}
		case ai.RoleUser:
			blocks, w := userBlocks(msg.Contents())
			warnings = append(warnings, w...)
			if len(blocks) > 0 {
				result = append(result, sdk.NewUserMessage(blocks...))
			}
		case ai.RoleAssistant:
			if blocks := assistantBlocks(msg); len(blocks) > 0 {
				result = append(result, sdk.NewAssistantMessage(blocks...))
			}
		case ai.RoleTool:
			// Tool results travel as user messages with tool_result blocks.
			var blocks []sdk.ContentBlockParamUnion
			for _, res := range convert.ToolResults(msg) {
				text, isErr := convert.ToolResultText(res)
				blocks = append(blocks, sdk.NewToolResultBlock(res.ToolCallID, text, isErr))
			}
			if len(blocks) > 0 {
				result = append(result, sdk.NewUserMessage(blocks...))
			}
		}
	}

	return result, system, warnings
}

func userBlocks(parts []ai.ContentPart) ([]sdk.ContentBlockParamUnion, []ai.Warning) {
	var blocks []sdk.ContentBlockParamUnion
	var warnings []ai.Warning
	for _, part := range parts {
		switch part.Type {
		case ai.PartText:
			if part.Text != "" {
				blocks = append(blocks, sdk.NewTextBlock(part.Text))
			}
		case ai.PartFile:
			f := part.File
			if !strings.HasPrefix(f.MediaType, "image/") {
				warnings = append(warnings, ai.Warning{Type: "unsupported-setting", Setting: "file", Message: "media type " + f.MediaType + " is not supported"})
				continue
			}
			if f.URL != "" {
				blocks = append(blocks, sdk.NewImageBlock(sdk.URLImageSourceParam{URL: f.URL}))
			} else if f.Base64 != "" {
				blocks = append(blocks, sdk.NewImageBlockBase64(f.MediaType, f.Base64))
			}
		}
	}
	return blocks, warnings
}

func assistantBlocks(msg ai.Message) []sdk.ContentBlockParamUnion {
	var blocks []sdk.ContentBlockParamUnion
	for _, part := range convert.Assistant(msg) {
		switch part.Type {
		case ai.PartText:
			blocks = append(blocks, sdk.NewTextBlock(part.Text))
		case ai.PartReasoning:
			// Thinking blocks can only be replayed with their signature.
			if sig, ok := part.ProviderMetadata["signature"].(string); ok && sig != "" {
				blocks = append(blocks, sdk.NewThinkingBlock(sig, part.Text))
			}
		case ai.PartToolCall:
			call := part.ToolCall
			// Server tool calls and their results are not replayed.
			if call.ProviderExecuted {
				continue
			}
			blocks = append(blocks, sdk.NewToolUseBlock(call.ID, convert.Arguments(*call), call.Name))
		}
	}
	return blocks
}
