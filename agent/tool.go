package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/tool"
)

// ToolArgs is the default argument type for agent tools.
// It provides a simple query-based interface for invoking sub-agents.
type ToolArgs struct {
	Query string `json:"query" jsonschema:"required,description=The query or task for the agent"`
}

// ToolOption configures an agent tool.
type ToolOption func(*toolConfig)

type toolConfig struct {
	description  string
	maxSteps     int
	agentOptions []Option
	schema       json.RawMessage
	toolOptions  []tool.Option
}

// WithToolDescription sets a custom description for the agent tool.
func WithToolDescription(desc string) ToolOption {
	return func(c *toolConfig) {
		c.description = desc
	}
}

// WithToolMaxSteps sets the maximum steps for the sub-agent.
func WithToolMaxSteps(n int) ToolOption {
	return func(c *toolConfig) {
		c.maxSteps = n
	}
}

// WithToolAgentOptions passes options through to the sub-agent's runs.
func WithToolAgentOptions(opts ...Option) ToolOption {
	return func(c *toolConfig) {
		c.agentOptions = append(c.agentOptions, opts...)
	}
}

// WithToolSchema sets a custom parameter schema for the agent tool.
func WithToolSchema(schema json.RawMessage) ToolOption {
	return func(c *toolConfig) {
		c.schema = schema
	}
}

// WithToolOptions applies tool options such as tool.RequireApproval.
func WithToolOptions(opts ...tool.Option) ToolOption {
	return func(c *toolConfig) {
		c.toolOptions = append(c.toolOptions, opts...)
	}
}

// AsTool wraps an agent as a tool so that one agent can delegate tasks to
// another. The tool accepts ToolArgs and returns the final text of the
// sub-agent's run. The caller's context value is passed on to the sub-agent.
//
// Example:
//
//	research := agent.New(model, researchTools)
//	registry.Add(agent.AsTool("research", research,
//	    agent.WithToolDescription("Delegate research tasks"),
//	    agent.WithToolMaxSteps(5),
//	))
func AsTool(name string, a *Agent, opts ...ToolOption) tool.Tool {
	return AsToolFunc(name, a, "", func(args ToolArgs) []ai.Message {
		return []ai.Message{ai.NewUserMessage(args.Query)}
	}, opts...)
}

// AsToolFunc wraps an agent as a tool with typed arguments converted into
// the sub-agent's input messages by toMessages.
func AsToolFunc[T any](name string, a *Agent, description string, toMessages func(args T) []ai.Message, opts ...ToolOption) tool.Tool {
	cfg := &toolConfig{
		description: description,
		maxSteps:    5,
	}
	if cfg.description == "" {
		cfg.description = fmt.Sprintf("Invoke the %s agent", name)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	t := tool.Tool{
		Name:        name,
		Description: cfg.description,
		Parameters:  cfg.schema,
		Execute: func(ctx context.Context, input any, opts tool.CallOptions) (any, error) {
			args, err := tool.Decode[T](input)
			if err != nil {
				return nil, err
			}
			runOpts := []Option{WithMaxSteps(cfg.maxSteps), WithContext(opts.Context)}
			runOpts = append(runOpts, cfg.agentOptions...)

			result, err := a.Run(ctx, toMessages(args), runOpts...)
			if err != nil {
				return nil, fmt.Errorf("agent execution failed: %w", err)
			}
			if result.StepCount() == 0 {
				return nil, errors.New("agent returned no response")
			}
			return result.Text(), nil
		},
	}
	if t.Parameters == nil {
		t.Parameters = ai.SchemaFor[T]().Build()
	}
	for _, opt := range cfg.toolOptions {
		opt(&t)
	}
	return t
}
