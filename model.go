package stepwise

import (
	"context"
	"encoding/json"
	"time"
)

// LanguageModel is a single-shot model endpoint. Each Generate call sends a
// message list and returns one complete response; cancellation is carried by
// ctx.
type LanguageModel interface {
	// Provider returns the provider identifier, e.g. "anthropic".
	Provider() string
	// ModelID returns the model identifier used for requests.
	ModelID() string
	// Generate sends the conversation and returns the model's response.
	Generate(ctx context.Context, messages []Message, opts ...Option) (*Response, error)
}

// FinishReason is the provider-independent reason a model stopped generating.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength        FinishReason = "length"
	FinishContentFilter FinishReason = "content-filter"
	FinishToolCalls     FinishReason = "tool-calls"
	FinishError         FinishReason = "error"
	FinishOther         FinishReason = "other"
	FinishUnknown       FinishReason = "unknown"
)

// Warning is a non-fatal notice from the provider, such as an unsupported setting.
type Warning struct {
	Type    string `json:"type"`
	Setting string `json:"setting,omitempty"`
	Message string `json:"message,omitempty"`
}

// ResponseMetadata identifies a model response.
type ResponseMetadata struct {
	ID               string         `json:"id,omitempty"`
	Timestamp        time.Time      `json:"timestamp"`
	ModelID          string         `json:"modelId,omitempty"`
	ProviderMetadata map[string]any `json:"providerMetadata,omitempty"`
}

// Response is the complete result of one Generate call.
type Response struct {
	// Content is the ordered output of the model: text, reasoning, files,
	// sources, tool calls and provider-executed tool results.
	Content         []ContentPart    `json:"content"`
	FinishReason    FinishReason     `json:"finishReason"`
	RawFinishReason string           `json:"rawFinishReason,omitempty"`
	Usage           Usage            `json:"usage"`
	Warnings        []Warning        `json:"warnings,omitempty"`
	Metadata        ResponseMetadata `json:"metadata"`
}

// Text concatenates the text parts of the response.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return JoinText(r.Content)
}

// ToolCalls returns the tool calls in the response, in order.
func (r *Response) ToolCalls() []ToolCall {
	if r == nil {
		return nil
	}
	var calls []ToolCall
	for _, p := range r.Content {
		if p.Type == PartToolCall && p.ToolCall != nil {
			calls = append(calls, *p.ToolCall)
		}
	}
	return calls
}

// ResponseSchema requests structured JSON output matching Schema.
type ResponseSchema struct {
	Name        string
	Description string
	Schema      json.RawMessage
}

// Options contains configuration for a model call.
type Options struct {
	MaxTokens       int
	Temperature     *float64
	Tools           []ToolDefinition
	ToolChoice      ToolChoice
	ResponseSchema  *ResponseSchema
	ProviderOptions map[string]any
}

// Option is a functional option for configuring model calls.
type Option func(*Options)

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithTools sets the tools the model may call.
func WithTools(tools []ToolDefinition) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// WithToolChoice controls whether and which tools the model calls.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// WithResponseSchema requests JSON output matching the schema.
func WithResponseSchema(schema *ResponseSchema) Option {
	return func(o *Options) {
		o.ResponseSchema = schema
	}
}

// WithProviderOptions passes provider-specific settings through unchanged.
func WithProviderOptions(opts map[string]any) Option {
	return func(o *Options) {
		o.ProviderOptions = opts
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
