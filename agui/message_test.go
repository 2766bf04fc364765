package agui

import (
	"testing"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/stepwise"
)

func strPtr(s string) *string { return &s }

func TestToMessages(t *testing.T) {
	msgs := ToMessages([]events.Message{
		{ID: "m1", Role: "developer", Content: strPtr("Be brief.")},
		{ID: "m2", Role: "user", Content: strPtr("Weather in Paris and Rome?")},
		{ID: "m3", Role: "assistant", ToolCalls: []events.ToolCall{
			{ID: "c1", Type: "function", Function: events.Function{Name: "weather", Arguments: `{"city":"Paris"}`}},
			{ID: "c2", Type: "function", Function: events.Function{Name: "weather", Arguments: `{"city":"Rome"}`}},
		}},
		{ID: "m4", Role: "tool", ToolCallID: strPtr("c1"), Content: strPtr("sunny")},
		{ID: "m5", Role: "tool", ToolCallID: strPtr("c2"), Content: strPtr("rainy")},
	})

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != ai.RoleSystem {
		t.Errorf("expected developer to map to system, got %s", msgs[0].Role)
	}
	if msgs[1].Text() != "Weather in Paris and Rome?" {
		t.Errorf("unexpected user text %q", msgs[1].Text())
	}

	calls := msgs[2].Parts
	if len(calls) != 2 || calls[0].ToolCall.Name != "weather" {
		t.Fatalf("unexpected assistant parts: %+v", calls)
	}
	input, ok := calls[0].ToolCall.Input.(map[string]any)
	if !ok || input["city"] != "Paris" {
		t.Errorf("expected decoded input, got %#v", calls[0].ToolCall.Input)
	}

	tool := msgs[3]
	if tool.Role != ai.RoleTool || len(tool.Parts) != 2 {
		t.Fatalf("expected merged tool message with 2 parts, got %+v", tool)
	}
	res := tool.Parts[1].ToolResult
	if res.ToolCallID != "c2" || res.ToolName != "weather" || res.Output != "rainy" {
		t.Errorf("unexpected tool result %+v", res)
	}
}

func TestFromMessages(t *testing.T) {
	call := ai.ToolCall{ID: "c1", Name: "weather", Arguments: `{"city":"Paris"}`}
	msgs := FromMessages([]ai.Message{
		ai.NewUserMessage("Weather?"),
		{Role: ai.RoleAssistant, Parts: []ai.ContentPart{ai.NewTextPart("Checking."), ai.NewToolCallPart(call)}},
		ai.NewToolMessage(
			ai.NewToolResultPart(ai.ToolResult{ToolCallID: "c1", Output: map[string]string{"sky": "clear"}}),
			ai.NewToolErrorPart(ai.ToolError{ToolCallID: "c2", Message: "timeout"}),
			ai.NewApprovalResponsePart(ai.Approve("ap-1")),
		),
	})

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleUser || *msgs[0].Content != "Weather?" {
		t.Errorf("unexpected user message %+v", msgs[0])
	}
	if msgs[1].Role != RoleAssistant || *msgs[1].Content != "Checking." {
		t.Errorf("unexpected assistant message %+v", msgs[1])
	}
	if len(msgs[1].ToolCalls) != 1 || msgs[1].ToolCalls[0].Function.Name != "weather" {
		t.Errorf("unexpected tool calls %+v", msgs[1].ToolCalls)
	}
	if *msgs[2].ToolCallID != "c1" || *msgs[2].Content != `{"sky":"clear"}` {
		t.Errorf("unexpected tool result message %+v", msgs[2])
	}
	if *msgs[3].ToolCallID != "c2" || *msgs[3].Content != "timeout" {
		t.Errorf("unexpected tool error message %+v", msgs[3])
	}
}
