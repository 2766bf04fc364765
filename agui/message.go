package agui

import (
	"encoding/json"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/stepwise"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToMessages converts AG-UI messages to conversation messages. Consecutive
// tool messages are merged into one tool message, and tool results take the
// tool name of the assistant call they answer.
func ToMessages(msgs []events.Message) []ai.Message {
	result := make([]ai.Message, 0, len(msgs))
	names := map[string]string{}
	for _, msg := range msgs {
		m := ToMessage(msg)
		for _, p := range m.Parts {
			if p.Type == ai.PartToolCall {
				names[p.ToolCall.ID] = p.ToolCall.Name
			}
		}
		if m.Role == ai.RoleTool {
			for i, p := range m.Parts {
				if p.Type == ai.PartToolResult {
					p.ToolResult.ToolName = names[p.ToolResult.ToolCallID]
					m.Parts[i] = p
				}
			}
			if n := len(result); n > 0 && result[n-1].Role == ai.RoleTool {
				result[n-1].Parts = append(result[n-1].Parts, m.Parts...)
				continue
			}
		}
		result = append(result, m)
	}
	return result
}

// ToMessage converts a single AG-UI message.
func ToMessage(msg events.Message) ai.Message {
	m := ai.Message{
		ID:   msg.ID,
		Role: toRole(msg.Role),
	}

	if m.Role == ai.RoleTool {
		res := ai.ToolResult{Output: ""}
		if msg.ToolCallID != nil {
			res.ToolCallID = *msg.ToolCallID
		}
		if msg.Content != nil {
			res.Output = *msg.Content
		}
		m.Parts = []ai.ContentPart{ai.NewToolResultPart(res)}
		return m
	}

	if msg.Content != nil {
		m.Content = *msg.Content
	}
	for _, tc := range msg.ToolCalls {
		m.Parts = append(m.Parts, ai.NewToolCallPart(ai.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
			Input:     decodeArgs(tc.Function.Arguments),
		}))
	}
	return m
}

func decodeArgs(args string) any {
	if args == "" {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal([]byte(args), &v); err != nil {
		return args
	}
	return v
}

// FromMessages converts conversation messages to AG-UI messages, for
// MESSAGES_SNAPSHOT events. A tool message becomes one AG-UI message per
// result or error; approval parts have no AG-UI form and are dropped.
func FromMessages(msgs []ai.Message) []events.Message {
	result := make([]events.Message, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, FromMessage(msg)...)
	}
	return result
}

// FromMessage converts a single conversation message.
func FromMessage(msg ai.Message) []events.Message {
	id := msg.ID
	if id == "" {
		id = events.GenerateMessageID()
	}

	if msg.Role == ai.RoleTool {
		var out []events.Message
		for _, p := range msg.Contents() {
			var callID, content string
			switch {
			case p.Type == ai.PartToolResult && p.ToolResult != nil:
				callID, content = p.ToolResult.ToolCallID, outputText(p.ToolResult.Output)
			case p.Type == ai.PartToolError && p.ToolError != nil:
				callID, content = p.ToolError.ToolCallID, p.ToolError.Error()
			default:
				continue
			}
			out = append(out, events.Message{
				ID:         events.GenerateMessageID(),
				Role:       RoleTool,
				Content:    &content,
				ToolCallID: &callID,
			})
		}
		return out
	}

	m := events.Message{
		ID:   id,
		Role: fromRole(msg.Role),
	}
	if text := msg.Text(); text != "" {
		m.Content = &text
	}
	for _, p := range msg.Parts {
		if p.Type != ai.PartToolCall || p.ToolCall == nil {
			continue
		}
		m.ToolCalls = append(m.ToolCalls, events.ToolCall{
			ID:   p.ToolCall.ID,
			Type: "function",
			Function: events.Function{
				Name:      p.ToolCall.Name,
				Arguments: p.ToolCall.Arguments,
			},
		})
	}
	return []events.Message{m}
}

func toRole(role string) ai.Role {
	switch role {
	case RoleAssistant:
		return ai.RoleAssistant
	case RoleSystem, "developer":
		return ai.RoleSystem
	case RoleTool:
		return ai.RoleTool
	default:
		return ai.RoleUser
	}
}

func fromRole(role ai.Role) string {
	switch role {
	case ai.RoleAssistant:
		return RoleAssistant
	case ai.RoleSystem:
		return RoleSystem
	case ai.RoleTool:
		return RoleTool
	default:
		return RoleUser
	}
}
