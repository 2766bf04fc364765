package openai

import (
	"fmt"
	"strings"

	sdk "github.com/openai/openai-go"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

func convertMessages(messages []ai.Message) ([]sdk.ChatCompletionMessageParamUnion, []ai.Warning) {
	var result []sdk.ChatCompletionMessageParamUnion
	var warnings []ai.Warning

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			if text := msg.Text(); text != "" {
				result = append(result, sdk.SystemMessage(text))
			}
		case ai.RoleUser:
			parts, w := userParts(msg.Contents())
			warnings = append(warnings, w...)
			if len(parts) > 0 {
				result = append(result, sdk.ChatCompletionMessageParamUnion{
					OfUser: &sdk.ChatCompletionUserMessageParam{
						Content: sdk.ChatCompletionUserMessageParamContentUnion{OfArrayOfContentParts: parts},
					},
				})
			}
		case ai.RoleAssistant:
			if p, ok := assistantParam(msg); ok {
				result = append(result, sdk.ChatCompletionMessageParamUnion{OfAssistant: p})
			}
		case ai.RoleTool:
			// One tool message per result.
			for _, res := range convert.ToolResults(msg) {
				text, _ := convert.ToolResultText(res)
				result = append(result, sdk.ToolMessage(text, res.ToolCallID))
			}
		}
	}
	return result, warnings
}

func userParts(parts []ai.ContentPart) ([]sdk.ChatCompletionContentPartUnionParam, []ai.Warning) {
	var result []sdk.ChatCompletionContentPartUnionParam
	var warnings []ai.Warning
	for _, part := range parts {
		switch part.Type {
		case ai.PartText:
			if part.Text != "" {
				result = append(result, sdk.TextContentPart(part.Text))
			}
		case ai.PartFile:
			f := part.File
			if !strings.HasPrefix(f.MediaType, "image/") {
				warnings = append(warnings, ai.Warning{Type: "unsupported-setting", Setting: "file", Message: "media type " + f.MediaType + " is not supported"})
				continue
			}
			url := f.URL
			if url == "" && f.Base64 != "" {
				url = fmt.Sprintf("data:%s;base64,%s", f.MediaType, f.Base64)
			}
			if url != "" {
				result = append(result, sdk.ImageContentPart(sdk.ChatCompletionContentPartImageImageURLParam{URL: url}))
			}
		}
	}
	return result, warnings
}

func assistantParam(msg ai.Message) (*sdk.ChatCompletionAssistantMessageParam, bool) {
	var text strings.Builder
	var calls []sdk.ChatCompletionMessageToolCallParam
	for _, part := range convert.Assistant(msg) {
		switch part.Type {
		case ai.PartText:
			text.WriteString(part.Text)
		case ai.PartToolCall:
			call := part.ToolCall
			if call.ProviderExecuted {
				continue
			}
			calls = append(calls, sdk.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: sdk.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: convert.ArgumentsJSON(*call),
				},
			})
		}
	}
	if text.Len() == 0 && len(calls) == 0 {
		return nil, false
	}
	p := &sdk.ChatCompletionAssistantMessageParam{ToolCalls: calls}
	if text.Len() > 0 {
		p.Content = sdk.ChatCompletionAssistantMessageParamContentUnion{OfString: sdk.String(text.String())}
	}
	return p, true
}
