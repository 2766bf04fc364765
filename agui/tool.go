package agui

import (
	"encoding/json"

	"github.com/spetersoncode/stepwise/tool"
)

// Tool is a tool definition sent by the frontend. Frontend tools run in the
// browser, so the run halts when the model calls one.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToTool converts a frontend tool to a client-executed tool.
func (t Tool) ToTool() tool.Tool {
	params := t.Parameters
	if len(params) == 0 {
		params = json.RawMessage(`{"type":"object"}`)
	}
	return tool.Client(t.Name, t.Description, params)
}

// ParseTools parses the Tools field of RunAgentInput.
func ParseTools(raw []any) ([]Tool, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	// Re-marshal and unmarshal to get proper typing
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var tools []Tool
	if err := json.Unmarshal(data, &tools); err != nil {
		return nil, err
	}

	return tools, nil
}

// ToTools converts frontend tools to client-executed tools.
func ToTools(tools []Tool) []tool.Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]tool.Tool, len(tools))
	for i, t := range tools {
		result[i] = t.ToTool()
	}
	return result
}

// ToolNames extracts the names from a slice of tools.
func ToolNames(tools []Tool) []string {
	if len(tools) == 0 {
		return nil
	}

	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name
	}
	return names
}
