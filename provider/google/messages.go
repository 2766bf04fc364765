package google

import (
	"encoding/base64"
	"strings"

	"google.golang.org/genai"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

// signatureKey holds a part's thought signature in ProviderMetadata.
const signatureKey = "thoughtSignature"

func convertMessages(messages []ai.Message) ([]*genai.Content, *genai.Content, []ai.Warning) {
	var contents []*genai.Content
	var system *genai.Content
	var warnings []ai.Warning

	for _, msg := range messages {
		var role string
		var parts []*genai.Part
		switch msg.Role {
		case ai.RoleSystem:
			if text := msg.Text(); text != "" {
				if system == nil {
					system = &genai.Content{}
				}
				system.Parts = append(system.Parts, &genai.Part{Text: text})
			}
			continue
		case ai.RoleUser:
			role = genai.RoleUser
			var w []ai.Warning
			parts, w = userParts(msg.Contents())
			warnings = append(warnings, w...)
		case ai.RoleAssistant:
			role = genai.RoleModel
			parts = modelParts(msg)
		case ai.RoleTool:
			role = genai.RoleUser
			for _, res := range convert.ToolResults(msg) {
				value, _ := convert.ToolResultValue(res)
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       res.ToolCallID,
					Name:     res.ToolName,
					Response: value,
				}})
			}
		}
		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}
	return contents, system, warnings
}

func userParts(parts []ai.ContentPart) ([]*genai.Part, []ai.Warning) {
	var result []*genai.Part
	var warnings []ai.Warning
	for _, part := range parts {
		switch part.Type {
		case ai.PartText:
			if part.Text != "" {
				result = append(result, &genai.Part{Text: part.Text})
			}
		case ai.PartFile:
			f := part.File
			switch {
			case f.Base64 != "":
				data, err := base64.StdEncoding.DecodeString(f.Base64)
				if err != nil {
					warnings = append(warnings, ai.Warning{Type: "other", Setting: "file", Message: "invalid base64 data: " + err.Error()})
					continue
				}
				result = append(result, &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: f.MediaType}})
			case f.URL != "":
				if !strings.HasPrefix(f.URL, "gs://") && !strings.HasPrefix(f.URL, "https://") {
					warnings = append(warnings, ai.Warning{Type: "unsupported-setting", Setting: "file", Message: "unsupported file URL " + f.URL})
					continue
				}
				result = append(result, &genai.Part{FileData: &genai.FileData{FileURI: f.URL, MIMEType: f.MediaType}})
			}
		}
	}
	return result, warnings
}

func modelParts(msg ai.Message) []*genai.Part {
	var result []*genai.Part
	for _, part := range convert.Assistant(msg) {
		switch part.Type {
		case ai.PartText:
			result = append(result, &genai.Part{Text: part.Text, ThoughtSignature: signature(part.ProviderMetadata)})
		case ai.PartReasoning:
			result = append(result, &genai.Part{Text: part.Text, Thought: true, ThoughtSignature: signature(part.ProviderMetadata)})
		case ai.PartToolCall:
			call := part.ToolCall
			if call.ProviderExecuted {
				continue
			}
			result = append(result, &genai.Part{
				FunctionCall:     &genai.FunctionCall{ID: call.ID, Name: call.Name, Args: convert.Arguments(*call)},
				ThoughtSignature: signature(part.ProviderMetadata),
			})
		}
	}
	return result
}

// signature reads a thought signature, which arrives as a base64 string once
// the conversation has been through JSON.
func signature(meta map[string]any) []byte {
	switch v := meta[signatureKey].(type) {
	case []byte:
		return v
	case string:
		if data, err := base64.StdEncoding.DecodeString(v); err == nil {
			return data
		}
	}
	return nil
}

func withSignature(part ai.ContentPart, sig []byte) ai.ContentPart {
	if len(sig) > 0 {
		part.ProviderMetadata = map[string]any{signatureKey: sig}
	}
	return part
}
