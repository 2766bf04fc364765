package bedrock

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	ai "github.com/spetersoncode/stepwise"
)

// RuntimeClient is the subset of the Bedrock runtime client used by the
// adapter. It matches *bedrockruntime.Client.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Model implements ai.LanguageModel on the Converse API.
type Model struct {
	rt        RuntimeClient
	model     string
	maxTokens int
}

// Option configures a Model.
type Option func(*config)

type config struct {
	client    RuntimeClient
	model     string
	maxTokens int
}

// WithModel sets the model or inference profile identifier.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithMaxTokens sets the completion cap used when a call sets none.
func WithMaxTokens(n int) Option {
	return func(c *config) { c.maxTokens = n }
}

// WithClient uses rt instead of building a runtime client from the config.
func WithClient(rt RuntimeClient) Option {
	return func(c *config) { c.client = rt }
}

// New creates a Bedrock model from an AWS configuration.
func New(cfg aws.Config, opts ...Option) *Model {
	c := config{model: DefaultModel, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(&c)
	}
	rt := c.client
	if rt == nil {
		rt = bedrockruntime.NewFromConfig(cfg)
	}
	return &Model{rt: rt, model: c.model, maxTokens: c.maxTokens}
}

// EnvCredentials reads static credentials from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func EnvCredentials() aws.CredentialsProvider {
	return aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "Environment",
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, errors.New("bedrock: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return creds, nil
	}))
}

// Provider returns "bedrock".
func (m *Model) Provider() string { return ai.ProviderBedrock.String() }

// ModelID returns the model identifier.
func (m *Model) ModelID() string { return m.model }

// Generate sends the conversation to Converse.
func (m *Model) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	names := newToolNames(options.Tools)

	msgs, system, warnings := convertMessages(messages, names)
	if len(msgs) == 0 {
		return nil, errors.New("bedrock: at least one user or assistant message is required")
	}
	input := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(m.model),
		Messages:        msgs,
		InferenceConfig: m.inferenceConfig(options),
	}
	if len(system) > 0 {
		input.System = system
	}
	input.ToolConfig = toolConfig(options, names)
	if budget, ok := thinkingBudget(options.ProviderOptions); ok {
		fields := map[string]any{"thinking": map[string]any{"type": "enabled", "budget_tokens": budget}}
		input.AdditionalModelRequestFields = document.NewLazyDocument(&fields)
	}

	out, err := m.rt.Converse(ctx, input)
	if err != nil {
		return nil, wrapError(err)
	}
	if out == nil {
		return nil, errors.New("bedrock: empty response")
	}
	resp := translateResponse(out, names, options.ResponseSchema != nil)
	resp.Metadata.ModelID = m.model
	resp.Warnings = append(warnings, resp.Warnings...)
	return resp, nil
}

func (m *Model) inferenceConfig(options *ai.Options) *brtypes.InferenceConfiguration {
	maxTokens := m.maxTokens
	if options.MaxTokens > 0 {
		maxTokens = options.MaxTokens
	}
	cfg := &brtypes.InferenceConfiguration{MaxTokens: aws.Int32(int32(maxTokens))}
	if options.Temperature != nil {
		cfg.Temperature = aws.Float32(float32(*options.Temperature))
	}
	return cfg
}

func thinkingBudget(opts map[string]any) (int, bool) {
	switch v := opts["thinking_budget"].(type) {
	case int:
		return v, v > 0
	case float64:
		return int(v), v > 0
	}
	return 0, false
}

var _ ai.LanguageModel = (*Model)(nil)
