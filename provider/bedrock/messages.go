package bedrock

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

var imageFormats = map[string]brtypes.ImageFormat{
	"image/png":  brtypes.ImageFormatPng,
	"image/jpeg": brtypes.ImageFormatJpeg,
	"image/gif":  brtypes.ImageFormatGif,
	"image/webp": brtypes.ImageFormatWebp,
}

func convertMessages(messages []ai.Message, names *toolNames) ([]brtypes.Message, []brtypes.SystemContentBlock, []ai.Warning) {
	var result []brtypes.Message
	var system []brtypes.SystemContentBlock
	var warnings []ai.Warning

	for _, msg := range messages {
		var role brtypes.ConversationRole
		var blocks []brtypes.ContentBlock
		switch msg.Role {
		case ai.RoleSystem:
			if text := msg.Text(); text != "" {
				system = append(system, &brtypes.SystemContentBlockMemberText{Value: text})
			}
			continue
		case ai.RoleUser:
			role = brtypes.ConversationRoleUser
			var w []ai.Warning
			blocks, w = userBlocks(msg.Contents())
			warnings = append(warnings, w...)
		case ai.RoleAssistant:
			role = brtypes.ConversationRoleAssistant
			blocks = assistantBlocks(msg, names)
		case ai.RoleTool:
			role = brtypes.ConversationRoleUser
			for _, res := range convert.ToolResults(msg) {
				text, isErr := convert.ToolResultText(res)
				block := brtypes.ToolResultBlock{
					ToolUseId: aws.String(res.ToolCallID),
					Content:   []brtypes.ToolResultContentBlock{&brtypes.ToolResultContentBlockMemberText{Value: text}},
				}
				if isErr {
					block.Status = brtypes.ToolResultStatusError
				}
				blocks = append(blocks, &brtypes.ContentBlockMemberToolResult{Value: block})
			}
		}
		if len(blocks) == 0 {
			continue
		}
		// Converse requires alternating roles.
		if n := len(result); n > 0 && result[n-1].Role == role {
			result[n-1].Content = append(result[n-1].Content, blocks...)
			continue
		}
		result = append(result, brtypes.Message{Role: role, Content: blocks})
	}
	return result, system, warnings
}

func userBlocks(parts []ai.ContentPart) ([]brtypes.ContentBlock, []ai.Warning) {
	var blocks []brtypes.ContentBlock
	var warnings []ai.Warning
	unsupported := func(msg string) {
		warnings = append(warnings, ai.Warning{Type: "unsupported-setting", Setting: "file", Message: msg})
	}
	for i, part := range parts {
		switch part.Type {
		case ai.PartText:
			if part.Text != "" {
				blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: part.Text})
			}
		case ai.PartFile:
			f := part.File
			if f.Base64 == "" {
				unsupported("Converse requires inline file data")
				continue
			}
			data, err := base64.StdEncoding.DecodeString(f.Base64)
			if err != nil {
				unsupported("invalid base64 data")
				continue
			}
			if format, ok := imageFormats[f.MediaType]; ok {
				blocks = append(blocks, &brtypes.ContentBlockMemberImage{Value: brtypes.ImageBlock{
					Format: format,
					Source: &brtypes.ImageSourceMemberBytes{Value: data},
				}})
				continue
			}
			if f.MediaType == "application/pdf" {
				name := f.Name
				if name == "" {
					name = fmt.Sprintf("document-%d", i+1)
				}
				blocks = append(blocks, &brtypes.ContentBlockMemberDocument{Value: brtypes.DocumentBlock{
					Format: brtypes.DocumentFormatPdf,
					Name:   aws.String(documentName(name)),
					Source: &brtypes.DocumentSourceMemberBytes{Value: data},
				}})
				continue
			}
			unsupported("media type " + f.MediaType + " is not supported")
		}
	}
	return blocks, warnings
}

// documentName keeps the characters Bedrock allows in document names.
func documentName(in string) string {
	var b strings.Builder
	for _, r := range in {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '(', r == ')', r == '[', r == ']':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func assistantBlocks(msg ai.Message, names *toolNames) []brtypes.ContentBlock {
	var blocks []brtypes.ContentBlock
	for _, part := range convert.Assistant(msg) {
		switch part.Type {
		case ai.PartText:
			blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: part.Text})
		case ai.PartReasoning:
			sig, _ := part.ProviderMetadata["signature"].(string)
			if sig == "" {
				continue
			}
			blocks = append(blocks, &brtypes.ContentBlockMemberReasoningContent{
				Value: &brtypes.ReasoningContentBlockMemberReasoningText{
					Value: brtypes.ReasoningTextBlock{Text: aws.String(part.Text), Signature: aws.String(sig)},
				},
			})
		case ai.PartToolCall:
			call := part.ToolCall
			if call.ProviderExecuted {
				continue
			}
			input := convert.Arguments(*call)
			blocks = append(blocks, &brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
				ToolUseId: aws.String(call.ID),
				Name:      aws.String(names.provider(call.Name)),
				Input:     document.NewLazyDocument(&input),
			}})
		}
	}
	return blocks
}
