package agui

import (
	"testing"

	ai "github.com/spetersoncode/stepwise"
)

func TestParseApprovalInput(t *testing.T) {
	t.Run("parses approval with edited input", func(t *testing.T) {
		data := []byte(`{"approvalId": "ap-1", "approved": true, "editedInput": {"path": "/tmp/x"}}`)
		input, err := ParseApprovalInput(data)
		if err != nil {
			t.Fatal(err)
		}
		resp := input.ToResponse()
		if resp.ApprovalID != "ap-1" || !resp.Approved {
			t.Errorf("unexpected response %+v", resp)
		}
		if string(resp.EditedInput) != `{"path": "/tmp/x"}` {
			t.Errorf("unexpected edited input %s", resp.EditedInput)
		}
	})

	t.Run("parses rejection with reason", func(t *testing.T) {
		input, err := ParseApprovalInput([]byte(`{"approvalId": "ap-2", "approved": false, "reason": "too risky"}`))
		if err != nil {
			t.Fatal(err)
		}
		if input.Approved || input.Reason != "too risky" {
			t.Errorf("unexpected input %+v", input)
		}
	})

	t.Run("returns error for invalid JSON", func(t *testing.T) {
		if _, err := ParseApprovalInput([]byte(`{invalid}`)); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

func TestParseApprovals(t *testing.T) {
	t.Run("nil props", func(t *testing.T) {
		got, err := ParseApprovals(nil)
		if err != nil || got != nil {
			t.Errorf("expected nil, got %v, %v", got, err)
		}
	})

	t.Run("props without approvals", func(t *testing.T) {
		got, err := ParseApprovals(map[string]any{"theme": "dark"})
		if err != nil || got != nil {
			t.Errorf("expected nil, got %v, %v", got, err)
		}
	})

	t.Run("decodes approvals", func(t *testing.T) {
		got, err := ParseApprovals(map[string]any{
			"approvals": []any{
				map[string]any{"approvalId": "ap-1", "approved": true},
				map[string]any{"approvalId": "ap-2", "approved": false, "reason": "no"},
			},
		})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || !got[0].Approved || got[1].Reason != "no" {
			t.Errorf("unexpected approvals %+v", got)
		}
	})
}

func TestAppendApprovals(t *testing.T) {
	t.Run("joins trailing tool message", func(t *testing.T) {
		msgs := []ai.Message{
			ai.NewUserMessage("hi"),
			ai.NewToolMessage(ai.NewToolResultPart(ai.ToolResult{ToolCallID: "c1", Output: "ok"})),
		}
		got := AppendApprovals(msgs, []ai.ApprovalResponse{ai.Approve("ap-1")})
		if len(got) != 2 {
			t.Fatalf("expected 2 messages, got %d", len(got))
		}
		if len(got[1].Parts) != 2 || got[1].Parts[1].Type != ai.PartApprovalResponse {
			t.Errorf("unexpected parts %+v", got[1].Parts)
		}
		if len(msgs[1].Parts) != 1 {
			t.Error("input messages were modified")
		}
	})

	t.Run("appends a tool message", func(t *testing.T) {
		msgs := []ai.Message{ai.NewUserMessage("hi")}
		got := AppendApprovals(msgs, []ai.ApprovalResponse{ai.Deny("ap-1", "no")})
		if len(got) != 2 || got[1].Role != ai.RoleTool {
			t.Fatalf("expected appended tool message, got %+v", got)
		}
	})

	t.Run("no responses", func(t *testing.T) {
		msgs := []ai.Message{ai.NewUserMessage("hi")}
		if got := AppendApprovals(msgs, nil); len(got) != 1 {
			t.Errorf("expected unchanged messages, got %d", len(got))
		}
	})
}
