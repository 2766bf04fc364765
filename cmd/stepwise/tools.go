package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spetersoncode/stepwise/mcp"
	"github.com/spetersoncode/stepwise/tool"
)

type timeArgs struct {
	Zone string `json:"zone,omitempty" jsonschema:"description=IANA time zone such as Europe/Paris; defaults to UTC"`
}

func timeTool() tool.Tool {
	return tool.Func("current_time", "Get the current time", func(_ context.Context, args timeArgs) (any, error) {
		loc := time.UTC
		if args.Zone != "" {
			l, err := time.LoadLocation(args.Zone)
			if err != nil {
				return nil, fmt.Errorf("unknown time zone %q", args.Zone)
			}
			loc = l
		}
		now := time.Now().In(loc)
		return map[string]string{"time": now.Format(time.RFC3339), "zone": loc.String()}, nil
	})
}

// buildRegistry registers the built-in tools selected by cfg.
func buildRegistry(cfg ToolsConfig) (*tool.Registry, error) {
	registry := tool.NewRegistry().Add(timeTool())

	var fileOpts []tool.FileToolOption
	if cfg.Root != "" {
		fileOpts = append(fileOpts, tool.WithBasePath(cfg.Root))
	}
	if !cfg.Approval {
		fileOpts = append(fileOpts, tool.WithUnapprovedWrites())
	}

	if cfg.Files {
		for _, t := range tool.FileTools(fileOpts...) {
			if err := registry.Register(t); err != nil {
				return nil, err
			}
		}
	}
	if cfg.Search {
		var searchOpts []tool.SearchToolOption
		if cfg.Root != "" {
			searchOpts = append(searchOpts, tool.WithSearchPath(cfg.Root))
		}
		if err := registry.Register(tool.NewSearchTool(searchOpts...)); err != nil {
			return nil, err
		}
	}
	if cfg.HTTP {
		var httpOpts []tool.HTTPToolOption
		if len(cfg.Hosts) > 0 {
			httpOpts = append(httpOpts, tool.WithAllowedHosts(cfg.Hosts...))
		}
		if err := registry.Register(tool.NewHTTPTool(httpOpts...)); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// connectMCP starts the configured MCP servers and registers their tools.
// The returned function closes every connection.
func connectMCP(ctx context.Context, servers []MCPServer, registry *tool.Registry, logger *slog.Logger) (func(), error) {
	var remotes []*mcp.RemoteTools
	closeAll := func() {
		for _, r := range remotes {
			r.Close()
		}
	}

	for _, s := range servers {
		env := os.Environ()
		for k, v := range s.Env {
			env = append(env, k+"="+v)
		}
		var opts []mcp.RemoteOption
		if s.Prefix != "" {
			opts = append(opts, mcp.WithPrefix(s.Prefix))
		}
		if s.Approval {
			opts = append(opts, mcp.WithRemoteApproval(tool.Always))
		}

		remote, err := mcp.NewRemoteTools(ctx, s.Command, env, s.Args, opts...)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("mcp server %s: %w", s.Name, err)
		}
		remotes = append(remotes, remote)
		if err := remote.RegisterTo(registry); err != nil {
			closeAll()
			return nil, fmt.Errorf("mcp server %s: %w", s.Name, err)
		}
		logger.Info("mcp server connected", "name", s.Name, "tools", remote.Len())
	}
	return closeAll, nil
}
