package agui

import (
	"encoding/json"

	ai "github.com/spetersoncode/stepwise"
)

// ApprovalInput is an approval decision from the frontend, answering a
// tool_approval_request CUSTOM event.
type ApprovalInput struct {
	ApprovalID  string          `json:"approvalId"`
	Approved    bool            `json:"approved"`
	Reason      string          `json:"reason,omitempty"`
	EditedInput json.RawMessage `json:"editedInput,omitempty"`
}

// ParseApprovalInput parses an approval decision from JSON.
func ParseApprovalInput(data []byte) (*ApprovalInput, error) {
	var input ApprovalInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}
	return &input, nil
}

// ToResponse converts the decision to an approval response.
func (a *ApprovalInput) ToResponse() ai.ApprovalResponse {
	return ai.ApprovalResponse{
		ApprovalID:  a.ApprovalID,
		Approved:    a.Approved,
		Reason:      a.Reason,
		EditedInput: a.EditedInput,
	}
}

// approvalProps is the shape of forwarded props carrying decisions.
type approvalProps struct {
	Approvals []ApprovalInput `json:"approvals"`
}

// ParseApprovals extracts approval decisions from forwarded props of the form
// {"approvals": [...]}. Props without approvals yield nil.
func ParseApprovals(props any) ([]ai.ApprovalResponse, error) {
	if props == nil {
		return nil, nil
	}
	data, err := json.Marshal(props)
	if err != nil {
		return nil, err
	}
	var p approvalProps
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if len(p.Approvals) == 0 {
		return nil, nil
	}
	out := make([]ai.ApprovalResponse, len(p.Approvals))
	for i := range p.Approvals {
		out[i] = p.Approvals[i].ToResponse()
	}
	return out, nil
}

// AppendApprovals adds responses to the conversation. They join a trailing
// tool message when there is one, since approvals are read from the last
// message only.
func AppendApprovals(msgs []ai.Message, responses []ai.ApprovalResponse) []ai.Message {
	if len(responses) == 0 {
		return msgs
	}
	if n := len(msgs); n > 0 && msgs[n-1].Role == ai.RoleTool {
		last := msgs[n-1]
		parts := append([]ai.ContentPart(nil), last.Parts...)
		for _, r := range responses {
			parts = append(parts, ai.NewApprovalResponsePart(r))
		}
		last.Parts = parts
		out := append([]ai.Message(nil), msgs[:n-1]...)
		return append(out, last)
	}
	return append(msgs, ai.ApprovalMessage(responses...))
}
