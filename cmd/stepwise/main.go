// Command stepwise runs a multi-step tool-calling conversation from the
// command line.
//
// Configuration comes from a YAML file (default stepwise.yaml), a .env file
// and the environment:
//
//	STEPWISE_MODEL       - Model reference, e.g. openai:gpt-5.2 (default: anthropic:claude-sonnet-4-5)
//	STEPWISE_MAX_STEPS   - Maximum steps per run (default: 10)
//	STEPWISE_TIMEOUT     - Total run timeout (default: 2m)
//	STEPWISE_LOG_LEVEL   - debug, info, warn or error (default: info)
//	STEPWISE_SESSION_DIR - Directory for saved sessions
//	ANTHROPIC_API_KEY, OPENAI_API_KEY, GOOGLE_API_KEY, VERTEX_PROJECT,
//	VERTEX_LOCATION, AWS_REGION and the AWS_* credential variables
//
// Usage:
//
//	stepwise -session notes "Summarize the Go files in this directory"
//
// Tool calls that need approval are confirmed on the terminal unless -yes is
// given. With -session the conversation is saved and continued on the next
// invocation.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/agent"
	"github.com/spetersoncode/stepwise/client"
	"github.com/spetersoncode/stepwise/internal/store"
	"github.com/spetersoncode/stepwise/provider/bedrock"
	"github.com/spetersoncode/stepwise/retry"
	"github.com/spetersoncode/stepwise/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "stepwise.yaml", "path to the YAML config file")
		modelRef   = flag.String("model", "", "model reference (provider:model), overrides config")
		session    = flag.String("session", "", "session name to load and save")
		system     = flag.String("system", "", "system prompt, overrides config")
		autoYes    = flag.Bool("yes", false, "approve every tool call without asking")
	)
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *modelRef != "" {
		cfg.Model = *modelRef
	}
	if *system != "" {
		cfg.System = *system
	}

	logger := newLogger(os.Stderr, cfg.LogLevel(), cfg.Log.NoColor)
	slog.SetDefault(logger)

	prompt := strings.Join(flag.Args(), " ")
	if prompt == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return errors.New("no prompt given")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan client.Event, 64)
	go logClientEvents(logger, events)
	c := client.New(clientConfig(cfg, events))

	model, err := c.Model(ctx, cfg.Model)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg.Tools)
	if err != nil {
		return err
	}
	closeMCP, err := connectMCP(ctx, cfg.MCP, registry, logger)
	if err != nil {
		return err
	}
	defer closeMCP()

	listeners := []any{telemetry.NewLogListener(logger)}
	if cfg.Telemetry.Tracing {
		tr, err := newTracing(logger, cfg.Telemetry.RecordIO)
		if err != nil {
			return err
		}
		defer tr.Shutdown(context.Background())
		listeners = append(listeners, tr.listener)
	}

	var adapter store.Adapter = store.NewMemoryAdapter()
	if *session != "" {
		if adapter, err = store.NewFileAdapter(cfg.Session.Dir); err != nil {
			return err
		}
	}
	history := store.NewMessageStore(adapter)
	if *session != "" {
		if err := history.Reload(ctx, *session); err != nil && !errors.Is(err, store.ErrKeyNotFound) {
			return err
		}
		logger.Debug("session loaded", "session", *session, "messages", history.Len())
	}
	history.Append(ai.NewUserMessage(prompt))

	opts := []agent.Option{
		agent.WithMaxSteps(cfg.MaxSteps),
		agent.WithTimeout(cfg.Timeout),
		agent.WithListeners(listeners...),
		agent.WithTelemetry("stepwise-cli", map[string]any{"session": *session}),
	}
	if cfg.System != "" {
		opts = append(opts, agent.WithSystem(cfg.System))
	}
	if len(cfg.ActiveTools) > 0 {
		opts = append(opts, agent.WithActiveTools(cfg.ActiveTools...))
	}
	a := agent.New(model, registry, opts...)

	approver := newApprover(os.Stdin, os.Stderr, *autoYes)
	var total ai.Usage
	for {
		result, err := a.Run(ctx, history.Messages())
		if err != nil {
			return err
		}
		history.Append(result.ResponseMessages...)
		total = total.Add(result.TotalUsage)

		requests := result.ApprovalRequests()
		if len(requests) == 0 {
			if text := result.Text(); text != "" {
				fmt.Println(text)
			}
			break
		}
		responses, err := approver.decide(requests)
		if err != nil {
			return err
		}
		history.Append(ai.ApprovalMessage(responses...))
	}

	logger.Info("done",
		"input_tokens", total.InputTokens,
		"output_tokens", total.OutputTokens,
		"total_tokens", total.TotalTokens,
	)

	if *session != "" {
		return history.Sync(ctx, *session)
	}
	return nil
}

func clientConfig(cfg *Config, events chan<- client.Event) client.Config {
	cc := client.Config{
		APIKeys: client.APIKeys{
			Anthropic: cfg.AnthropicKey,
			OpenAI:    cfg.OpenAIKey,
			Google:    cfg.GoogleKey,
		},
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Vertex: client.VertexConfig{
			Project:  cfg.VertexProject,
			Location: cfg.VertexLocation,
		},
		AWS: aws.Config{
			Region:      cfg.AWSRegion,
			Credentials: bedrock.EnvCredentials(),
		},
		Events: events,
	}
	if cfg.Retry.MaxAttempts > 0 {
		rc := retry.DefaultConfig()
		rc.MaxAttempts = cfg.Retry.MaxAttempts
		if cfg.Retry.InitialDelay > 0 {
			rc.InitialDelay = cfg.Retry.InitialDelay
		}
		if cfg.Retry.MaxDelay > 0 {
			rc.MaxDelay = cfg.Retry.MaxDelay
		}
		cc.Retry = &rc
	}
	if cfg.RateLimit != nil {
		cc.RateLimit = &client.RateLimitConfig{
			InitialTPM: cfg.RateLimit.InitialTPM,
			MaxTPM:     cfg.RateLimit.MaxTPM,
		}
	}
	return cc
}

func logClientEvents(logger *slog.Logger, events <-chan client.Event) {
	for e := range events {
		switch e.Type {
		case client.EventRequestError:
			logger.Warn("model request failed", "provider", e.Provider, "model", e.Model, "error", e.Error)
		case client.EventRetry:
			if e.RetryEvent != nil {
				logger.Warn("retrying model request",
					"attempt", e.RetryEvent.Attempt,
					"max_attempts", e.RetryEvent.MaxAttempts,
					"delay", e.RetryEvent.Delay,
				)
			}
		case client.EventRequestComplete:
			logger.Debug("model request complete", "provider", e.Provider, "model", e.Model, "duration", e.Duration)
		}
	}
}

// approver resolves approval requests on the terminal.
type approver struct {
	in      *bufio.Scanner
	out     io.Writer
	autoYes bool
}

func newApprover(in io.Reader, out io.Writer, autoYes bool) *approver {
	return &approver{in: bufio.NewScanner(in), out: out, autoYes: autoYes}
}

func (a *approver) decide(requests []ai.ApprovalRequest) ([]ai.ApprovalResponse, error) {
	responses := make([]ai.ApprovalResponse, 0, len(requests))
	for _, req := range requests {
		if a.autoYes {
			responses = append(responses, ai.Approve(req.ApprovalID))
			continue
		}
		fmt.Fprintf(a.out, "Allow %s(%s)? [y/N] ", req.ToolCall.Name, req.ToolCall.Arguments)
		if !a.in.Scan() {
			if err := a.in.Err(); err != nil {
				return nil, err
			}
			responses = append(responses, ai.Deny(req.ApprovalID, "no answer"))
			continue
		}
		switch strings.ToLower(strings.TrimSpace(a.in.Text())) {
		case "y", "yes":
			responses = append(responses, ai.Approve(req.ApprovalID))
		default:
			responses = append(responses, ai.Deny(req.ApprovalID, "denied by user"))
		}
	}
	return responses, nil
}
