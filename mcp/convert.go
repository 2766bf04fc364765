package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/tool"
)

// ToMCPTool converts a tool descriptor to an MCP tool. The parameter schema
// is passed through as the raw input schema.
func ToMCPTool(t tool.Tool) mcp.Tool {
	schema := t.Parameters
	if len(schema) == 0 {
		schema = json.RawMessage(`{"type":"object"}`)
	}
	return mcp.NewToolWithRawSchema(t.Name, t.Description, schema)
}

// Caller invokes a tool on an MCP server.
type Caller interface {
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// FromMCPTool converts an MCP tool into a dynamic tool that runs through c.
func FromMCPTool(t mcp.Tool, c Caller) tool.Tool {
	schema := json.RawMessage(t.RawInputSchema)
	if len(schema) == 0 {
		if data, err := json.Marshal(t.InputSchema); err == nil {
			schema = data
		}
	}
	name := t.Name
	return tool.Tool{
		Name:        name,
		Description: t.Description,
		Parameters:  schema,
		Dynamic:     true,
		Execute: func(ctx context.Context, input any, _ tool.CallOptions) (any, error) {
			req := mcp.CallToolRequest{}
			req.Params.Name = name
			req.Params.Arguments = input
			res, err := c.CallTool(ctx, req)
			if err != nil {
				return nil, err
			}
			return resultOutput(res)
		},
	}
}

// resultOutput extracts a tool output from an MCP result. Structured content
// wins over text; error results become errors.
func resultOutput(res *mcp.CallToolResult) (any, error) {
	if res == nil {
		return nil, errors.New("mcp: empty tool result")
	}
	text := contentText(res.Content)
	if res.IsError {
		if text == "" {
			text = "tool reported an error"
		}
		return nil, errors.New(text)
	}
	if res.StructuredContent != nil {
		return res.StructuredContent, nil
	}
	return text, nil
}

func contentText(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		switch v := c.(type) {
		case mcp.TextContent:
			parts = append(parts, v.Text)
		case *mcp.TextContent:
			parts = append(parts, v.Text)
		default:
			if data, err := json.Marshal(v); err == nil {
				parts = append(parts, string(data))
			}
		}
	}
	return strings.Join(parts, "\n")
}

// toCallToolResult renders a tool output for an MCP client. Text outputs are
// sent as text; anything else is sent as JSON text plus structured content.
func toCallToolResult(output any) *mcp.CallToolResult {
	if u, ok := output.(tool.ContextUpdate); ok {
		output = u.Output
	}
	out := ai.OutputOf(output)
	text, err := ai.EncodeOutput(out)
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	if out.IsError() {
		return mcp.NewToolResultError(text)
	}
	res := mcp.NewToolResultText(text)
	if out.Type == ai.OutputJSON {
		res.StructuredContent = out.Value
	}
	return res
}
