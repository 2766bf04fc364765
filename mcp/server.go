package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/tool"
)

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name        string
	version     string
	includeGate bool
	context     any
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// IncludeGatedTools exposes tools that need approval. Their calls run
// without asking.
func IncludeGatedTools() ServerOption {
	return func(c *serverConfig) {
		c.includeGate = true
	}
}

// WithToolContext sets the context value passed to every tool invocation.
func WithToolContext(v any) ServerOption {
	return func(c *serverConfig) {
		c.context = v
	}
}

// NewServer creates an MCP server that exposes the executable tools of a
// registry. Arguments are validated against each tool's schema before it
// runs; validation and execution failures are reported as error results.
//
// Example:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("weather", "Get weather", weatherHandler),
//	    tool.Func("search", "Search web", searchHandler),
//	)
//
//	mcpServer := mcp.NewServer(registry,
//	    mcp.WithName("my-tools"),
//	    mcp.WithVersion("1.0.0"),
//	)
//
//	server.ServeStdio(mcpServer)
func NewServer(registry *tool.Registry, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "stepwise-mcp-server",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	for _, t := range registry.Tools() {
		if !t.Executable() {
			// Client-side tools have nothing to run here.
			continue
		}
		if t.NeedsApproval != nil && !cfg.includeGate {
			continue
		}
		s.AddTool(ToMCPTool(t), handler(registry, t, cfg))
	}

	return s
}

func handler(registry *tool.Registry, t tool.Tool, cfg *serverConfig) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := "{}"
		if a := req.GetArguments(); len(a) > 0 {
			data, err := json.Marshal(a)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
			}
			args = string(data)
		}

		call, err := registry.ParseAny(ai.ToolCall{
			ID:        ai.NewID(),
			Name:      t.Name,
			Arguments: args,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		output, err := run(ctx, t, call.Input, tool.CallOptions{
			ToolCallID: call.ID,
			Context:    cfg.context,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toCallToolResult(output), nil
	}
}

// run executes t, draining a stream down to its final value.
func run(ctx context.Context, t tool.Tool, input any, opts tool.CallOptions) (any, error) {
	if t.Stream == nil {
		return t.Execute(ctx, input, opts)
	}
	var (
		last any
		seen bool
	)
	for v, err := range t.Stream(ctx, input, opts) {
		if err != nil {
			return nil, err
		}
		last, seen = v, true
	}
	if !seen {
		return nil, errors.New("tool stream produced no output")
	}
	return last, nil
}

// ServeStdio starts an MCP server that communicates over stdin/stdout.
// This is the standard transport for MCP servers invoked as subprocesses.
func ServeStdio(registry *tool.Registry, opts ...ServerOption) error {
	s := NewServer(registry, opts...)
	return server.ServeStdio(s)
}
