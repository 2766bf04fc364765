package anthropic

import (
	"context"
	"errors"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	ai "github.com/spetersoncode/stepwise"
)

// MessagesClient is the subset of the Anthropic SDK used by the adapter. It
// is satisfied by *sdk.MessageService so tests can pass a stub.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Model implements ai.LanguageModel on top of the Anthropic Messages API.
type Model struct {
	msg       MessagesClient
	model     string
	maxTokens int
}

// Option configures a Model.
type Option func(*config)

type config struct {
	apiKey    string
	client    MessagesClient
	model     string
	maxTokens int
}

// WithAPIKey sets the API key instead of reading ANTHROPIC_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithMaxTokens sets the completion cap used when a call sets none.
func WithMaxTokens(n int) Option {
	return func(c *config) { c.maxTokens = n }
}

// WithClient uses msg instead of building an SDK client.
func WithClient(msg MessagesClient) Option {
	return func(c *config) { c.client = msg }
}

// New creates an Anthropic model. Without WithAPIKey or WithClient the SDK
// reads ANTHROPIC_API_KEY from the environment.
func New(opts ...Option) *Model {
	cfg := config{model: DefaultModel, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(&cfg)
	}
	msg := cfg.client
	if msg == nil {
		var reqOpts []option.RequestOption
		if cfg.apiKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(cfg.apiKey))
		}
		client := sdk.NewClient(reqOpts...)
		msg = &client.Messages
	}
	return &Model{msg: msg, model: cfg.model, maxTokens: cfg.maxTokens}
}

// Provider returns "anthropic".
func (m *Model) Provider() string { return ai.ProviderAnthropic.String() }

// ModelID returns the model identifier.
func (m *Model) ModelID() string { return m.model }

// Generate sends the conversation to the Messages API.
func (m *Model) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	params, warnings, err := m.buildParams(messages, options)
	if err != nil {
		return nil, err
	}
	resp, err := m.msg.New(ctx, *params)
	if err != nil {
		return nil, wrapError(err)
	}
	if resp == nil {
		return nil, errors.New("anthropic: empty response")
	}
	out := translateResponse(resp, options.ResponseSchema != nil)
	out.Warnings = append(warnings, out.Warnings...)
	return out, nil
}

func (m *Model) buildParams(messages []ai.Message, options *ai.Options) (*sdk.MessageNewParams, []ai.Warning, error) {
	msgs, system, warnings := convertMessages(messages)
	if len(msgs) == 0 {
		return nil, nil, errors.New("anthropic: at least one user or assistant message is required")
	}

	maxTokens := m.maxTokens
	if options.MaxTokens > 0 {
		maxTokens = options.MaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(m.model),
		MaxTokens: int64(maxTokens),
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if options.Temperature != nil {
		params.Temperature = sdk.Float(*options.Temperature)
	}
	if budget, ok := thinkingBudget(options.ProviderOptions); ok {
		params.Thinking = sdk.ThinkingConfigParamOfEnabled(budget)
	}

	tools := convertTools(options.Tools)
	choice := options.ToolChoice
	if options.ResponseSchema != nil {
		tools = append(tools, jsonTool(options.ResponseSchema))
		if len(options.Tools) == 0 {
			choice = ai.SpecificTool(jsonResponseToolName)
		}
	}
	if len(tools) > 0 {
		params.Tools = tools
		if choice != "" {
			params.ToolChoice = convertToolChoice(choice)
		}
	}
	return &params, warnings, nil
}

// thinkingBudget reads the "thinking_budget" provider option.
func thinkingBudget(opts map[string]any) (int64, bool) {
	switch v := opts["thinking_budget"].(type) {
	case int:
		return int64(v), v > 0
	case int64:
		return v, v > 0
	case float64:
		return int64(v), v > 0
	}
	return 0, false
}

var _ ai.LanguageModel = (*Model)(nil)
