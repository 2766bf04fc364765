// Package mcp bridges stepwise tools and the Model Context Protocol.
//
// The integration works both ways:
//
//   - Server: expose a [tool.Registry] as an MCP server so MCP clients like
//     Claude Desktop can discover and call its tools.
//   - Client: connect to an MCP server and use its tools as dynamic
//     [tool.Tool] values through [RemoteTools].
//
// # Exposing Tools as an MCP Server
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("weather", "Get weather", weatherHandler),
//	)
//
//	// Serve over stdio (for subprocess-based MCP clients)
//	if err := mcp.ServeStdio(registry); err != nil {
//	    log.Fatal(err)
//	}
//
// Tools that need approval are left out unless [IncludeGatedTools] is given,
// since the server cannot ask for approval on the caller's behalf.
//
// # Consuming MCP Servers
//
//	remote, err := mcp.NewRemoteTools(ctx, "./my-mcp-server", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer remote.Close()
//
//	registry := tool.NewRegistry()
//	if err := remote.RegisterTo(registry); err != nil {
//	    log.Fatal(err)
//	}
//	a := agent.New(model, registry)
//
// Remote tools are marked Dynamic. A result flagged as an error by the server
// becomes a tool error in the run.
package mcp
