// Package middleware provides LanguageModel wrappers that apply cross-cutting
// behavior to every Generate call: adaptive rate limiting and default call
// settings.
package middleware

import (
	"context"

	ai "github.com/spetersoncode/stepwise"
)

// Middleware wraps a LanguageModel.
type Middleware func(ai.LanguageModel) ai.LanguageModel

// Wrap applies mws to model. The first middleware is the outermost.
func Wrap(model ai.LanguageModel, mws ...Middleware) ai.LanguageModel {
	for i := len(mws) - 1; i >= 0; i-- {
		model = mws[i](model)
	}
	return model
}

// DefaultSettings returns a middleware that applies defaults before the
// per-call options, so callers can still override every setting.
func DefaultSettings(defaults ...ai.Option) Middleware {
	return func(next ai.LanguageModel) ai.LanguageModel {
		return &defaultsModel{LanguageModel: next, defaults: defaults}
	}
}

type defaultsModel struct {
	ai.LanguageModel
	defaults []ai.Option
}

func (m *defaultsModel) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	merged := make([]ai.Option, 0, len(m.defaults)+len(opts))
	merged = append(merged, m.defaults...)
	merged = append(merged, opts...)
	return m.LanguageModel.Generate(ctx, messages, merged...)
}
