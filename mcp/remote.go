package mcp

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/spetersoncode/stepwise/tool"
)

// RemoteOption configures RemoteTools.
type RemoteOption func(*remoteConfig)

type remoteConfig struct {
	prefix   string
	approval tool.ApprovalFunc
}

// WithPrefix prepends prefix to every remote tool name, so tools from several
// servers can share a registry. Calls still use the server's name.
func WithPrefix(prefix string) RemoteOption {
	return func(c *remoteConfig) { c.prefix = prefix }
}

// WithRemoteApproval gates every remote tool behind fn.
func WithRemoteApproval(fn tool.ApprovalFunc) RemoteOption {
	return func(c *remoteConfig) { c.approval = fn }
}

// RemoteTools provides the tools of an MCP server as dynamic tool.Tool
// values. The tool list is cached and can be refreshed with Refresh.
//
// RemoteTools is safe for concurrent use.
type RemoteTools struct {
	client *client.Client
	cfg    remoteConfig

	mu    sync.RWMutex
	tools map[string]tool.Tool
}

// NewRemoteTools starts command as an MCP server over stdio.
func NewRemoteTools(ctx context.Context, command string, env []string, args []string, opts ...RemoteOption) (*RemoteTools, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}
	return NewRemoteToolsFromClient(ctx, c, opts...)
}

// NewRemoteToolsSSE connects to an MCP server over SSE.
func NewRemoteToolsSSE(ctx context.Context, baseURL string, opts ...RemoteOption) (*RemoteTools, error) {
	c, err := client.NewSSEMCPClient(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}
	return NewRemoteToolsFromClient(ctx, c, opts...)
}

// NewRemoteToolsFromClient starts and initializes c, then fetches its tools.
func NewRemoteToolsFromClient(ctx context.Context, c *client.Client, opts ...RemoteOption) (*RemoteTools, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}
	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "stepwise-mcp-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}

	r := &RemoteTools{client: c, tools: map[string]tool.Tool{}}
	for _, opt := range opts {
		opt(&r.cfg)
	}
	if err := r.Refresh(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}
	return r, nil
}

// Close closes the connection to the MCP server.
func (r *RemoteTools) Close() error {
	return r.client.Close()
}

// Refresh fetches the current list of tools from the MCP server.
func (r *RemoteTools) Refresh(ctx context.Context) error {
	result, err := r.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	tools := make(map[string]tool.Tool, len(result.Tools))
	for _, t := range result.Tools {
		rt := FromMCPTool(t, r.client)
		rt.Name = r.cfg.prefix + t.Name
		rt.NeedsApproval = r.cfg.approval
		tools[rt.Name] = rt
	}

	r.mu.Lock()
	r.tools = tools
	r.mu.Unlock()
	return nil
}

// Tools returns the remote tools sorted by name.
func (r *RemoteTools) Tools() []tool.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]tool.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	slices.SortFunc(tools, func(a, b tool.Tool) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return tools
}

// Get retrieves a remote tool by name.
func (r *RemoteTools) Get(name string) (tool.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of available tools.
func (r *RemoteTools) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// RegisterTo adds every remote tool to registry.
func (r *RemoteTools) RegisterTo(registry *tool.Registry) error {
	for _, t := range r.Tools() {
		if err := registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}
