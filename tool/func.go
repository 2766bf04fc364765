package tool

import (
	"context"
	"encoding/json"
	"iter"

	ai "github.com/spetersoncode/stepwise"
)

// TypedHandler is a function that executes a tool call with typed arguments.
// The args parameter is decoded from the call's validated input.
type TypedHandler[T any] func(ctx context.Context, args T) (any, error)

// Option configures a tool built by Func or Stream.
type Option func(*Tool)

// WithApproval gates the tool behind fn.
func WithApproval(fn ApprovalFunc) Option {
	return func(t *Tool) {
		t.NeedsApproval = fn
	}
}

// RequireApproval gates every call of the tool.
func RequireApproval() Option {
	return WithApproval(Always)
}

// Editable lets approval responses replace the call's input.
func Editable() Option {
	return func(t *Tool) {
		t.InputEditable = true
	}
}

// WithSchema overrides the reflected parameter schema.
func WithSchema(schema json.RawMessage) Option {
	return func(t *Tool) {
		t.Parameters = schema
	}
}

// WithProviderOptions attaches provider-specific metadata to the definition.
func WithProviderOptions(opts map[string]any) Option {
	return func(t *Tool) {
		t.ProviderOptions = opts
	}
}

// Func creates a tool with its schema reflected from T.
//
// Example:
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("weather", "Get weather", func(ctx context.Context, args WeatherArgs) (any, error) {
//	        return getWeather(args.Location), nil
//	    }),
//	)
func Func[T any](name, description string, fn TypedHandler[T], opts ...Option) Tool {
	t := Tool{
		Name:        name,
		Description: description,
		Parameters:  ai.SchemaFor[T]().Build(),
		Execute: func(ctx context.Context, input any, _ CallOptions) (any, error) {
			args, err := Decode[T](input)
			if err != nil {
				return nil, err
			}
			return fn(ctx, args)
		},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Stream creates a tool with preliminary outputs and its schema reflected
// from T.
func Stream[T any](name, description string, fn func(ctx context.Context, args T) iter.Seq2[any, error], opts ...Option) Tool {
	t := Tool{
		Name:        name,
		Description: description,
		Parameters:  ai.SchemaFor[T]().Build(),
		Stream: func(ctx context.Context, input any, _ CallOptions) iter.Seq2[any, error] {
			args, err := Decode[T](input)
			if err != nil {
				return func(yield func(any, error) bool) { yield(nil, err) }
			}
			return fn(ctx, args)
		},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Client declares a tool that the caller executes. Calls to it end the run
// so the caller can supply the result in the next conversation turn.
func Client(name, description string, schema json.RawMessage) Tool {
	return Tool{Name: name, Description: description, Parameters: schema}
}
