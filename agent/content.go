package agent

import (
	ai "github.com/spetersoncode/stepwise"
)

// assembleContent builds a step's content: the model's parts in provider
// order with tool calls replaced by their parsed form, then the local
// outcomes in call order.
func assembleContent(content []ai.ContentPart, calls []ai.ToolCall, outcomes []outcome) []ai.ContentPart {
	byID := make(map[string]ai.ToolCall, len(calls))
	for _, c := range calls {
		byID[c.ID] = c
	}

	out := make([]ai.ContentPart, 0, len(content)+len(outcomes))
	next := 0
	for _, p := range content {
		switch p.Type {
		case ai.PartToolCall:
			if p.ToolCall == nil || next >= len(calls) {
				continue
			}
			part := ai.NewToolCallPart(calls[next])
			part.ProviderMetadata = p.ProviderMetadata
			out = append(out, part)
			next++
		case ai.PartToolResult:
			if p.ToolResult == nil {
				continue
			}
			res := *p.ToolResult
			res.ProviderExecuted = true
			if c, ok := byID[res.ToolCallID]; ok {
				res.Input, res.Dynamic = c.Input, c.Dynamic
			}
			part := ai.NewToolResultPart(res)
			part.ProviderMetadata = p.ProviderMetadata
			out = append(out, part)
		case ai.PartToolError:
			if p.ToolError == nil {
				continue
			}
			te := *p.ToolError
			te.ProviderExecuted = true
			if c, ok := byID[te.ToolCallID]; ok {
				te.Input, te.Dynamic = c.Input, c.Dynamic
			}
			part := ai.NewToolErrorPart(te)
			part.ProviderMetadata = p.ProviderMetadata
			out = append(out, part)
		default:
			out = append(out, p)
		}
	}

	for _, o := range outcomes {
		if o.part.Type != "" {
			out = append(out, o.part)
		}
	}
	return out
}

// toResponseMessages converts step content into the messages appended to
// the conversation: one assistant message with everything the model produced
// and one tool message with local results.
func toResponseMessages(content []ai.ContentPart) []ai.Message {
	var assistant, results []ai.ContentPart

	for _, p := range content {
		switch p.Type {
		case ai.PartText:
			if p.Text != "" {
				assistant = append(assistant, p)
			}
		case ai.PartReasoning, ai.PartFile, ai.PartToolCall, ai.PartApprovalRequest:
			assistant = append(assistant, p)
		case ai.PartToolResult:
			res := *p.ToolResult
			res.Output = ai.OutputOf(res.Output)
			part := ai.NewToolResultPart(res)
			part.ProviderMetadata = p.ProviderMetadata
			if res.ProviderExecuted {
				assistant = append(assistant, part)
			} else {
				results = append(results, part)
			}
		case ai.PartToolError:
			te := *p.ToolError
			part := ai.NewToolResultPart(ai.ToolResult{
				ToolCallID:       te.ToolCallID,
				ToolName:         te.ToolName,
				Input:            te.Input,
				Output:           ai.ErrorOutputOf(te),
				ProviderExecuted: te.ProviderExecuted,
				Dynamic:          te.Dynamic,
			})
			part.ProviderMetadata = p.ProviderMetadata
			if te.ProviderExecuted {
				assistant = append(assistant, part)
			} else {
				results = append(results, part)
			}
		}
	}

	var msgs []ai.Message
	if len(assistant) > 0 {
		msgs = append(msgs, ai.Message{Role: ai.RoleAssistant, Parts: assistant})
	}
	if len(results) > 0 {
		msgs = append(msgs, ai.NewToolMessage(results...))
	}
	return msgs
}
