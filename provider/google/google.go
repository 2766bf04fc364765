package google

import (
	"context"
	"errors"

	"google.golang.org/genai"

	ai "github.com/spetersoncode/stepwise"
)

// ModelsClient is the subset of the GenAI SDK used by the adapter. It is
// satisfied by *genai.Models.
type ModelsClient interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Model implements ai.LanguageModel on Gemini.
type Model struct {
	models   ModelsClient
	model    string
	provider ai.Provider
}

// Option configures a Model.
type Option func(*config)

type config struct {
	apiKey   string
	project  string
	location string
	vertex   bool
	model    string
	client   ModelsClient
}

// WithAPIKey sets the Gemini API key.
func WithAPIKey(key string) Option {
	return func(c *config) { c.apiKey = key }
}

// WithVertex selects the Vertex AI backend for the given project and region.
func WithVertex(project, location string) Option {
	return func(c *config) {
		c.vertex = true
		c.project = project
		c.location = location
	}
}

// WithModel sets the model identifier.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithClient uses models instead of building an SDK client.
func WithClient(models ModelsClient) Option {
	return func(c *config) { c.client = models }
}

// New creates a Gemini model.
func New(ctx context.Context, opts ...Option) (*Model, error) {
	cfg := config{model: DefaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &Model{models: cfg.client, model: cfg.model, provider: ai.ProviderGoogle}
	if cfg.vertex {
		m.provider = ai.ProviderVertex
	}
	if m.models != nil {
		return m, nil
	}

	cc := &genai.ClientConfig{APIKey: cfg.apiKey, Backend: genai.BackendGeminiAPI}
	if cfg.vertex {
		cc = &genai.ClientConfig{Backend: genai.BackendVertexAI, Project: cfg.project, Location: cfg.location}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}
	m.models = client.Models
	return m, nil
}

// Provider returns "google" or "vertex".
func (m *Model) Provider() string { return m.provider.String() }

// ModelID returns the model identifier.
func (m *Model) ModelID() string { return m.model }

// Generate sends the conversation to GenerateContent.
func (m *Model) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	options := ai.ApplyOptions(opts...)
	contents, system, warnings := convertMessages(messages)
	if len(contents) == 0 {
		return nil, errors.New("google: at least one user or model message is required")
	}

	resp, err := m.models.GenerateContent(ctx, m.model, contents, buildConfig(options, system))
	if err != nil {
		return nil, wrapError(err, m.provider)
	}
	if resp == nil {
		return nil, errors.New("google: empty response")
	}
	out := translateResponse(resp)
	out.Warnings = append(warnings, out.Warnings...)
	return out, nil
}

func buildConfig(options *ai.Options, system *genai.Content) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{SystemInstruction: system}
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(options.MaxTokens)
	}
	if options.Temperature != nil {
		temp := float32(*options.Temperature)
		cfg.Temperature = &temp
	}
	if budget, ok := thinkingBudget(options.ProviderOptions); ok {
		cfg.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true, ThinkingBudget: &budget}
	}
	if len(options.Tools) > 0 {
		cfg.Tools = convertTools(options.Tools)
		if options.ToolChoice != "" {
			cfg.ToolConfig = convertToolChoice(options.ToolChoice)
		}
	}
	if options.ResponseSchema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = convertSchema(options.ResponseSchema.Schema)
	}
	return cfg
}

func thinkingBudget(opts map[string]any) (int32, bool) {
	switch v := opts["thinking_budget"].(type) {
	case int:
		return int32(v), true
	case int32:
		return v, true
	case float64:
		return int32(v), true
	}
	return 0, false
}

var _ ai.LanguageModel = (*Model)(nil)
