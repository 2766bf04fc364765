package stepwise

// Step is one model invocation together with its resolved tool activity.
// Steps are immutable once built.
type Step struct {
	// Number is the zero-based index of the step within its run.
	Number   int    `json:"number"`
	Provider string `json:"provider"`
	ModelID  string `json:"modelId"`
	// Messages is the exact message list sent to the model.
	Messages []Message `json:"messages"`
	// Content is the ordered content produced by the step, including local
	// tool results, errors and approval requests.
	Content         []ContentPart    `json:"content"`
	FinishReason    FinishReason     `json:"finishReason"`
	RawFinishReason string           `json:"rawFinishReason,omitempty"`
	Usage           Usage            `json:"usage"`
	Response        ResponseMetadata `json:"response"`
	Warnings        []Warning        `json:"warnings,omitempty"`
}

// Text concatenates the step's text parts.
func (s Step) Text() string {
	return JoinText(s.Content)
}

// Reasoning concatenates the step's reasoning parts.
func (s Step) Reasoning() string {
	var out string
	for _, p := range s.Content {
		if p.Type == PartReasoning {
			out += p.Text
		}
	}
	return out
}

// ToolCalls returns the tool calls of the step.
func (s Step) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range s.Content {
		if p.Type == PartToolCall && p.ToolCall != nil {
			calls = append(calls, *p.ToolCall)
		}
	}
	return calls
}

// ToolResults returns the successful tool results of the step.
func (s Step) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range s.Content {
		if p.Type == PartToolResult && p.ToolResult != nil {
			results = append(results, *p.ToolResult)
		}
	}
	return results
}

// ToolErrors returns the tool errors of the step.
func (s Step) ToolErrors() []ToolError {
	var errs []ToolError
	for _, p := range s.Content {
		if p.Type == PartToolError && p.ToolError != nil {
			errs = append(errs, *p.ToolError)
		}
	}
	return errs
}

// ApprovalRequests returns the approval requests the step left pending.
func (s Step) ApprovalRequests() []ApprovalRequest {
	var reqs []ApprovalRequest
	for _, p := range s.Content {
		if p.Type == PartApprovalRequest && p.ApprovalRequest != nil {
			reqs = append(reqs, *p.ApprovalRequest)
		}
	}
	return reqs
}

// Files returns the files generated in the step.
func (s Step) Files() []File {
	var files []File
	for _, p := range s.Content {
		if p.Type == PartFile && p.File != nil {
			files = append(files, *p.File)
		}
	}
	return files
}

// Sources returns the sources cited in the step.
func (s Step) Sources() []Source {
	var sources []Source
	for _, p := range s.Content {
		if p.Type == PartSource && p.Source != nil {
			sources = append(sources, *p.Source)
		}
	}
	return sources
}
