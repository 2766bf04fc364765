package retry

import (
	"context"

	ai "github.com/spetersoncode/stepwise"
)

// Model wraps a LanguageModel so that transient Generate failures are
// retried with backoff.
type Model struct {
	ai.LanguageModel
	cfg     Config
	onEvent func(Event)
}

// ModelOption configures a retrying Model.
type ModelOption func(*Model)

// WithConfig sets the backoff configuration.
func WithConfig(cfg Config) ModelOption {
	return func(m *Model) { m.cfg = cfg }
}

// WithEvents reports retry attempts to fn.
func WithEvents(fn func(Event)) ModelOption {
	return func(m *Model) { m.onEvent = fn }
}

// Wrap returns model with retries applied. DefaultConfig is used unless
// WithConfig is given.
func Wrap(model ai.LanguageModel, opts ...ModelOption) *Model {
	m := &Model{LanguageModel: model, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate calls the wrapped model, retrying transient errors.
func (m *Model) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	return DoWithEvents(ctx, m.cfg, m.onEvent, func(ctx context.Context) (*ai.Response, error) {
		return m.LanguageModel.Generate(ctx, messages, opts...)
	})
}
