package agent

import (
	"fmt"

	ai "github.com/spetersoncode/stepwise"
)

// collectedApproval pairs an approval response with the request and tool
// call it resolves.
type collectedApproval struct {
	request  ai.ApprovalRequest
	response ai.ApprovalResponse
	call     ai.ToolCall
}

// collectApprovals reads the approval responses in the trailing tool
// message. Calls that already have a result in that message are skipped.
func collectApprovals(messages []ai.Message) ([]collectedApproval, error) {
	if len(messages) == 0 {
		return nil, nil
	}
	last := messages[len(messages)-1]
	if last.Role != ai.RoleTool {
		return nil, nil
	}

	requests := make(map[string]ai.ApprovalRequest)
	calls := make(map[string]ai.ToolCall)
	for _, m := range messages {
		if m.Role != ai.RoleAssistant {
			continue
		}
		for _, p := range m.Parts {
			switch {
			case p.Type == ai.PartApprovalRequest && p.ApprovalRequest != nil:
				requests[p.ApprovalRequest.ApprovalID] = *p.ApprovalRequest
			case p.Type == ai.PartToolCall && p.ToolCall != nil:
				calls[p.ToolCall.ID] = *p.ToolCall
			}
		}
	}

	answered := make(map[string]bool)
	for _, p := range last.Parts {
		if p.Type == ai.PartToolResult && p.ToolResult != nil {
			answered[p.ToolResult.ToolCallID] = true
		}
	}

	var out []collectedApproval
	for _, p := range last.Parts {
		if p.Type != ai.PartApprovalResponse || p.ApprovalResponse == nil {
			continue
		}
		resp := *p.ApprovalResponse
		req, ok := requests[resp.ApprovalID]
		if !ok {
			return nil, &ai.InvalidToolApprovalError{ApprovalID: resp.ApprovalID}
		}
		call, ok := calls[req.ToolCall.ID]
		if !ok {
			return nil, &ai.ToolCallNotFoundError{ToolCallID: req.ToolCall.ID, ApprovalID: resp.ApprovalID}
		}
		if answered[call.ID] {
			continue
		}
		out = append(out, collectedApproval{request: req, response: resp, call: call})
	}
	return out, nil
}

// resolveApprovals executes approved calls and records denied ones before
// the first step. Their results are appended to the response messages as a
// single tool message.
func (r *run) resolveApprovals(initial []ai.Message) error {
	approvals, err := collectApprovals(initial)
	if err != nil || len(approvals) == 0 {
		return err
	}

	outcomes := make([]outcome, len(approvals))
	var jobs []job
	for i, a := range approvals {
		if !a.response.Approved {
			outcomes[i] = outcome{part: ai.NewToolResultPart(ai.ToolResult{
				ToolCallID: a.call.ID,
				ToolName:   a.call.Name,
				Input:      a.call.Input,
				Output:     ai.DeniedOutput(a.response.Reason),
				Dynamic:    a.call.Dynamic,
			})}
			continue
		}

		t, ok := r.agent.registry.Get(a.call.Name)
		if !ok {
			outcomes[i] = errorOutcome(a.call, &ai.NoSuchToolError{ToolName: a.call.Name, AvailableTools: r.agent.registry.Names()})
			continue
		}
		call := a.call
		if len(a.response.EditedInput) > 0 {
			if !t.InputEditable {
				outcomes[i] = errorOutcome(call, fmt.Errorf("tool %s does not accept edited input", call.Name))
				continue
			}
			call.Arguments = string(a.response.EditedInput)
		}
		parsed, err := r.agent.registry.ParseAny(call)
		if err != nil {
			outcomes[i] = errorOutcome(call, err)
			continue
		}
		if !t.Executable() {
			continue
		}
		jobs = append(jobs, job{index: i, call: parsed, tool: t})
	}

	results := r.runJobs(r.tc.Context(), 0, jobs, initial)
	for j, jb := range jobs {
		outcomes[jb.index] = results[j]
	}
	if err := r.tc.Err(); err != nil {
		return err
	}
	r.applyContextUpdates(outcomes)

	var content []ai.ContentPart
	for _, o := range outcomes {
		if o.part.Type != "" {
			content = append(content, o.part)
		}
	}
	r.responses.Append(toResponseMessages(content)...)
	return nil
}
