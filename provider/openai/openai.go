package openai

import (
	"context"
	"errors"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	ai "github.com/spetersoncode/stepwise"
)

// ChatCompletionsClient is the subset of the OpenAI SDK used by the adapter.
// It is satisfied by *sdk.ChatCompletionService.
type ChatCompletionsClient interface {
	New(ctx context.Context, body sdk.ChatCompletionNewParams, opts ...option.RequestOption) (*sdk.ChatCompletion, error)
}

// Model implements ai.LanguageModel on top of the Chat Completions API.
type Model struct {
	chat  ChatCompletionsClient
	model string
}

// Option configures a Model.
type Option func(*config)

type config struct {
	apiKey  string
	baseURL string
	client  ChatCompletionsClient
	model   string
}

// WithAPIKey sets the API key instead of reading OPENAI_API_KEY.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithBaseURL targets a compatible server instead of api.openai.com.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithClient uses chat instead of building an SDK client.
func WithClient(chat ChatCompletionsClient) Option {
	return func(c *config) { c.client = chat }
}

// New creates an OpenAI model. Without WithAPIKey or WithClient the SDK reads
// OPENAI_API_KEY from the environment.
func New(opts ...Option) *Model {
	cfg := config{model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}
	chat := cfg.client
	if chat == nil {
		var reqOpts []option.RequestOption
		if cfg.apiKey != "" {
			reqOpts = append(reqOpts, option.WithAPIKey(cfg.apiKey))
		}
		if cfg.baseURL != "" {
			reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
		}
		client := sdk.NewClient(reqOpts...)
		chat = &client.Chat.Completions
	}
	return &Model{chat: chat, model: cfg.model}
}

// Provider returns "openai".
func (m *Model) Provider() string { return ai.ProviderOpenAI.String() }

// ModelID returns the model identifier.
func (m *Model) ModelID() string { return m.model }

// Generate sends the conversation to the Chat Completions API.
func (m *Model) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	params, warnings, err := m.buildParams(messages, options)
	if err != nil {
		return nil, err
	}
	resp, err := m.chat.New(ctx, *params)
	if err != nil {
		return nil, wrapError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("openai: response has no choices")
	}
	out := translateResponse(resp)
	out.Warnings = append(warnings, out.Warnings...)
	return out, nil
}

func (m *Model) buildParams(messages []ai.Message, options *ai.Options) (*sdk.ChatCompletionNewParams, []ai.Warning, error) {
	msgs, warnings := convertMessages(messages)
	if len(msgs) == 0 {
		return nil, nil, errors.New("openai: at least one message is required")
	}
	params := sdk.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.model),
		Messages: msgs,
	}
	if options.MaxTokens > 0 {
		params.MaxCompletionTokens = sdk.Int(int64(options.MaxTokens))
	}
	if options.Temperature != nil {
		params.Temperature = sdk.Float(*options.Temperature)
	}
	if effort, ok := options.ProviderOptions["reasoning_effort"].(string); ok && effort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(effort)
	}
	if len(options.Tools) > 0 {
		params.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			params.ToolChoice = convertToolChoice(options.ToolChoice)
		}
	}
	if options.ResponseSchema != nil {
		params.ResponseFormat = schemaFormat(options.ResponseSchema)
	}
	return &params, warnings, nil
}

var _ ai.LanguageModel = (*Model)(nil)
