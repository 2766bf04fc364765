package main

import (
	"context"
	"time"

	"github.com/spetersoncode/stepwise/tool"
)

type weatherArgs struct {
	Location string `json:"location" jsonschema:"required,description=City name, e.g. Paris"`
}

type echoArgs struct {
	Message string `json:"message" jsonschema:"required,description=Message to echo back"`
}

type deleteArgs struct {
	ID string `json:"id" jsonschema:"required,description=Identifier of the note to delete"`
}

// SetupDemoTools registers demo tools for testing the server.
// These tools are enabled by default (STEPWISE_DEMO_TOOLS=true).
func SetupDemoTools(registry *tool.Registry) {
	registry.Add(
		tool.Func("get_weather", "Get the current weather for a location",
			func(ctx context.Context, args weatherArgs) (any, error) {
				select {
				case <-time.After(50 * time.Millisecond): // Simulate API latency
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				return map[string]any{
					"location":    args.Location,
					"temperature": 22,
					"conditions":  "Sunny",
					"unit":        "celsius",
				}, nil
			},
		),
		tool.Func("get_time", "Get the current time",
			func(context.Context, struct{}) (any, error) {
				return map[string]string{"time": time.Now().UTC().Format(time.RFC3339), "timezone": "UTC"}, nil
			},
		),
		tool.Func("echo", "Echo back the input message (useful for testing)",
			func(_ context.Context, args echoArgs) (any, error) {
				return args.Message, nil
			},
		),
		// Exercises the frontend approval flow.
		tool.Func("delete_note", "Delete a note by ID",
			func(_ context.Context, args deleteArgs) (any, error) {
				return map[string]any{"deleted": args.ID}, nil
			},
			tool.RequireApproval(),
		),
	)
}
