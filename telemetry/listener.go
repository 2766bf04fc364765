package telemetry

import "context"

// A listener is any value implementing one or more of the interfaces below.
// Hooks it does not implement are skipped. Errors returned by hooks are
// ignored by the notifier.
type (
	RunStartListener interface {
		OnRunStart(ctx context.Context, e *RunStartEvent) error
	}
	StepStartListener interface {
		OnStepStart(ctx context.Context, e *StepStartEvent) error
	}
	ToolCallStartListener interface {
		OnToolCallStart(ctx context.Context, e *ToolCallStartEvent) error
	}
	ToolCallFinishListener interface {
		OnToolCallFinish(ctx context.Context, e *ToolCallFinishEvent) error
	}
	StepFinishListener interface {
		OnStepFinish(ctx context.Context, e *StepFinishEvent) error
	}
	RunFinishListener interface {
		OnRunFinish(ctx context.Context, e *RunFinishEvent) error
	}
)

// Func adapters turn a single callback into a listener.
type (
	RunStartFunc       func(ctx context.Context, e *RunStartEvent) error
	StepStartFunc      func(ctx context.Context, e *StepStartEvent) error
	ToolCallStartFunc  func(ctx context.Context, e *ToolCallStartEvent) error
	ToolCallFinishFunc func(ctx context.Context, e *ToolCallFinishEvent) error
	StepFinishFunc     func(ctx context.Context, e *StepFinishEvent) error
	RunFinishFunc      func(ctx context.Context, e *RunFinishEvent) error
)

func (f RunStartFunc) OnRunStart(ctx context.Context, e *RunStartEvent) error {
	return f(ctx, e)
}

func (f StepStartFunc) OnStepStart(ctx context.Context, e *StepStartEvent) error {
	return f(ctx, e)
}

func (f ToolCallStartFunc) OnToolCallStart(ctx context.Context, e *ToolCallStartEvent) error {
	return f(ctx, e)
}

func (f ToolCallFinishFunc) OnToolCallFinish(ctx context.Context, e *ToolCallFinishEvent) error {
	return f(ctx, e)
}

func (f StepFinishFunc) OnStepFinish(ctx context.Context, e *StepFinishEvent) error {
	return f(ctx, e)
}

func (f RunFinishFunc) OnRunFinish(ctx context.Context, e *RunFinishEvent) error {
	return f(ctx, e)
}
