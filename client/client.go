package client

import (
	"context"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/middleware"
	"github.com/spetersoncode/stepwise/provider/anthropic"
	"github.com/spetersoncode/stepwise/provider/bedrock"
	"github.com/spetersoncode/stepwise/provider/google"
	"github.com/spetersoncode/stepwise/provider/openai"
	"github.com/spetersoncode/stepwise/retry"
)

// APIKeys holds API keys for the key-authenticated providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// VertexConfig selects the Google Cloud project and region for "vertex"
// models. Credentials come from Application Default Credentials.
type VertexConfig struct {
	Project  string
	Location string
}

// RateLimitConfig enables adaptive rate limiting shared by every model of a
// provider.
type RateLimitConfig struct {
	InitialTPM float64
	MaxTPM     float64
}

// Config holds configuration for creating a Client.
type Config struct {
	APIKeys APIKeys

	// OpenAIBaseURL targets an OpenAI-compatible server.
	OpenAIBaseURL string

	Vertex VertexConfig

	// AWS configures "bedrock" models.
	AWS aws.Config

	// Retry configures retry behavior for transient errors. Nil uses
	// retry.DefaultConfig; use retry.Disabled() to turn retries off.
	Retry *retry.Config

	// RateLimit enables per-provider adaptive rate limiting when set.
	RateLimit *RateLimitConfig

	// Defaults are applied before per-call options on every model.
	Defaults []ai.Option

	// Events is an optional channel for receiving request events.
	// Events are sent non-blocking; if the channel is full, events are dropped.
	Events chan<- Event
}

// Factory builds the base model for a model ID.
type Factory func(ctx context.Context, modelID string) (ai.LanguageModel, error)

// Client resolves "provider:model" references into configured models.
// Models are built lazily and cached per reference.
type Client struct {
	cfg Config

	mu        sync.Mutex
	factories map[string]Factory
	limiters  map[string]*middleware.AdaptiveRateLimiter
	models    map[string]ai.LanguageModel
}

// New creates a Client with factories for the built-in providers.
func New(cfg Config) *Client {
	c := &Client{
		cfg:      cfg,
		limiters: map[string]*middleware.AdaptiveRateLimiter{},
		models:   map[string]ai.LanguageModel{},
	}
	c.factories = map[string]Factory{
		ai.ProviderAnthropic.String(): c.anthropic,
		ai.ProviderOpenAI.String():    c.openai,
		ai.ProviderGoogle.String():    c.google,
		ai.ProviderVertex.String():    c.vertex,
		ai.ProviderBedrock.String():   c.bedrock,
	}
	return c
}

// Register adds or replaces the factory for a provider.
func (c *Client) Register(provider string, f Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[provider] = f
}

// ParseModelRef splits "provider:model". Model IDs may themselves contain
// colons (Bedrock profile versions), so only the first colon separates.
func ParseModelRef(ref string) (provider, modelID string, err error) {
	provider, modelID, ok := strings.Cut(ref, ":")
	if !ok || provider == "" || modelID == "" {
		return "", "", &ErrInvalidModelRef{Ref: ref}
	}
	return provider, modelID, nil
}

// Model returns the model for ref, wrapped with the configured defaults,
// events, retries and rate limiting.
func (c *Client) Model(ctx context.Context, ref string) (ai.LanguageModel, error) {
	provider, modelID, err := ParseModelRef(ref)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.models[ref]; ok {
		return m, nil
	}
	factory, ok := c.factories[provider]
	if !ok {
		return nil, &ErrUnknownProvider{Provider: provider}
	}
	base, err := factory(ctx, modelID)
	if err != nil {
		return nil, err
	}
	m := c.wrap(provider, base)
	c.models[ref] = m
	return m, nil
}

// MustModel is like Model but panics on error.
func (c *Client) MustModel(ctx context.Context, ref string) ai.LanguageModel {
	m, err := c.Model(ctx, ref)
	if err != nil {
		panic(err)
	}
	return m
}

func (c *Client) wrap(provider string, base ai.LanguageModel) ai.LanguageModel {
	var mws []middleware.Middleware
	if len(c.cfg.Defaults) > 0 {
		mws = append(mws, middleware.DefaultSettings(c.cfg.Defaults...))
	}
	if c.cfg.Events != nil {
		events := c.cfg.Events
		mws = append(mws, func(next ai.LanguageModel) ai.LanguageModel {
			return &observed{LanguageModel: next, events: events}
		})
	}
	mws = append(mws, c.retryMiddleware(base))
	if rl := c.cfg.RateLimit; rl != nil {
		limiter, ok := c.limiters[provider]
		if !ok {
			limiter = middleware.NewAdaptiveRateLimiter(rl.InitialTPM, rl.MaxTPM)
			c.limiters[provider] = limiter
		}
		mws = append(mws, middleware.RateLimit(limiter))
	}
	return middleware.Wrap(base, mws...)
}

func (c *Client) retryMiddleware(base ai.LanguageModel) middleware.Middleware {
	cfg := retry.DefaultConfig()
	if c.cfg.Retry != nil {
		cfg = *c.cfg.Retry
	}
	opts := []retry.ModelOption{retry.WithConfig(cfg)}
	if events := c.cfg.Events; events != nil {
		provider, modelID := base.Provider(), base.ModelID()
		opts = append(opts, retry.WithEvents(func(e retry.Event) {
			emit(events, Event{Type: EventRetry, Provider: provider, Model: modelID, RetryEvent: &e})
		}))
	}
	return func(next ai.LanguageModel) ai.LanguageModel {
		return retry.Wrap(next, opts...)
	}
}

func (c *Client) anthropic(_ context.Context, modelID string) (ai.LanguageModel, error) {
	if c.cfg.APIKeys.Anthropic == "" {
		return nil, &ErrMissingAPIKey{Provider: ai.ProviderAnthropic.String(), Model: modelID}
	}
	return anthropic.New(anthropic.WithAPIKey(c.cfg.APIKeys.Anthropic), anthropic.WithModel(modelID)), nil
}

func (c *Client) openai(_ context.Context, modelID string) (ai.LanguageModel, error) {
	opts := []openai.Option{openai.WithModel(modelID)}
	if c.cfg.OpenAIBaseURL != "" {
		// Local compatible servers usually need no key.
		opts = append(opts, openai.WithBaseURL(c.cfg.OpenAIBaseURL), openai.WithAPIKey(c.cfg.APIKeys.OpenAI))
	} else {
		if c.cfg.APIKeys.OpenAI == "" {
			return nil, &ErrMissingAPIKey{Provider: ai.ProviderOpenAI.String(), Model: modelID}
		}
		opts = append(opts, openai.WithAPIKey(c.cfg.APIKeys.OpenAI))
	}
	return openai.New(opts...), nil
}

func (c *Client) google(ctx context.Context, modelID string) (ai.LanguageModel, error) {
	if c.cfg.APIKeys.Google == "" {
		return nil, &ErrMissingAPIKey{Provider: ai.ProviderGoogle.String(), Model: modelID}
	}
	return google.New(ctx, google.WithAPIKey(c.cfg.APIKeys.Google), google.WithModel(modelID))
}

func (c *Client) vertex(ctx context.Context, modelID string) (ai.LanguageModel, error) {
	return google.New(ctx, google.WithVertex(c.cfg.Vertex.Project, c.cfg.Vertex.Location), google.WithModel(modelID))
}

func (c *Client) bedrock(_ context.Context, modelID string) (ai.LanguageModel, error) {
	return bedrock.New(c.cfg.AWS, bedrock.WithModel(modelID)), nil
}
