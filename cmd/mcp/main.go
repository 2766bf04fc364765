// Command mcp is a reference MCP server that exposes stepwise tools over stdio.
//
// It serves a tool.Registry as an MCP server, so MCP clients (like Claude
// Desktop or other AI assistants) can discover and use the tools. Set
// MCP_FILES_ROOT to also expose read-only file tools rooted at that directory.
//
// Usage:
//
//	go run ./cmd/mcp
//
// Configuration for Claude Desktop (~/Library/Application Support/Claude/claude_desktop_config.json):
//
//	{
//	    "mcpServers": {
//	        "stepwise-tools": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/stepwise"
//	        }
//	    }
//	}
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/spetersoncode/stepwise/mcp"
	"github.com/spetersoncode/stepwise/tool"
)

func main() {
	// stdout carries the protocol, so logs go to stderr.
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo, NoColor: true}))

	registry := newRegistry(os.Getenv("MCP_FILES_ROOT"))
	logger.Info("serving tools over stdio", "tools", registry.Names())

	if err := mcp.ServeStdio(registry,
		mcp.WithName("stepwise-mcp-example"),
		mcp.WithVersion("1.0.0"),
	); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newRegistry(filesRoot string) *tool.Registry {
	registry := tool.NewRegistry().Add(
		tool.Func("echo", "Echo back the input text", echoHandler),
		tool.Func("time", "Get the current time", timeHandler),
		tool.Func("calculate", "Perform basic arithmetic", calculateHandler),
	)
	if filesRoot != "" {
		// write_file needs approval and is therefore not served.
		registry.Add(tool.FileTools(tool.WithBasePath(filesRoot))...)
	}
	return registry
}

// EchoArgs are the arguments for the echo tool.
type EchoArgs struct {
	Text string `json:"text" jsonschema:"required,description=The text to echo back"`
}

func echoHandler(ctx context.Context, args EchoArgs) (any, error) {
	return args.Text, nil
}

// TimeArgs are the arguments for the time tool.
type TimeArgs struct {
	Format string `json:"format,omitempty" jsonschema:"description=Time format: rfc3339\\, unix or human,enum=rfc3339,enum=unix,enum=human"`
}

func timeHandler(ctx context.Context, args TimeArgs) (any, error) {
	now := time.Now()

	switch strings.ToLower(args.Format) {
	case "rfc3339":
		return now.Format(time.RFC3339), nil
	case "unix":
		return strconv.FormatInt(now.Unix(), 10), nil
	default:
		return now.Format("Monday, January 2, 2006 at 3:04 PM MST"), nil
	}
}

// CalculateArgs are the arguments for the calculate tool.
type CalculateArgs struct {
	Operation string  `json:"operation" jsonschema:"required,description=The operation to perform,enum=add,enum=subtract,enum=multiply,enum=divide"`
	A         float64 `json:"a" jsonschema:"required,description=First number"`
	B         float64 `json:"b" jsonschema:"required,description=Second number"`
}

func calculateHandler(ctx context.Context, args CalculateArgs) (any, error) {
	var result float64

	switch args.Operation {
	case "add":
		result = args.A + args.B
	case "subtract":
		result = args.A - args.B
	case "multiply":
		result = args.A * args.B
	case "divide":
		if args.B == 0 {
			return nil, fmt.Errorf("cannot divide by zero")
		}
		result = args.A / args.B
	default:
		return nil, fmt.Errorf("unknown operation: %s", args.Operation)
	}

	return map[string]float64{"result": result}, nil
}
