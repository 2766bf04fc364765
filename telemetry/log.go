package telemetry

import (
	"context"
	"log/slog"
)

// LogListener writes run lifecycle events to a slog.Logger. Run and step
// boundaries log at Info, tool calls at Debug, failures at Warn.
type LogListener struct {
	logger *slog.Logger
}

// NewLogListener creates a listener writing to logger, or slog.Default()
// when logger is nil.
func NewLogListener(logger *slog.Logger) *LogListener {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogListener{logger: logger}
}

func (l *LogListener) with(i Info) *slog.Logger {
	lg := l.logger.With(
		slog.String("run_id", i.RunID),
		slog.String("provider", i.Provider),
		slog.String("model", i.ModelID),
	)
	if i.FunctionID != "" {
		lg = lg.With(slog.String("function_id", i.FunctionID))
	}
	return lg
}

// OnRunStart logs the start of a run.
func (l *LogListener) OnRunStart(ctx context.Context, e *RunStartEvent) error {
	l.with(e.Info).InfoContext(ctx, "run started",
		slog.Int("messages", len(e.Messages)),
		slog.Any("tools", e.Tools),
	)
	return nil
}

// OnStepStart logs the start of a step.
func (l *LogListener) OnStepStart(ctx context.Context, e *StepStartEvent) error {
	l.with(e.Info).InfoContext(ctx, "step started",
		slog.Int("step", e.Step),
		slog.Int("messages", len(e.Messages)),
	)
	return nil
}

// OnToolCallStart logs a tool call about to run.
func (l *LogListener) OnToolCallStart(ctx context.Context, e *ToolCallStartEvent) error {
	l.with(e.Info).DebugContext(ctx, "tool call started",
		slog.Int("step", e.Step),
		slog.String("tool", e.Call.Name),
		slog.String("call_id", e.Call.ID),
	)
	return nil
}

// OnToolCallFinish logs the outcome of a tool call.
func (l *LogListener) OnToolCallFinish(ctx context.Context, e *ToolCallFinishEvent) error {
	lg := l.with(e.Info)
	attrs := []any{
		slog.Int("step", e.Step),
		slog.String("tool", e.Call.Name),
		slog.String("call_id", e.Call.ID),
		slog.Duration("duration", e.Duration),
	}
	if e.Err != nil {
		lg.WarnContext(ctx, "tool call failed", append(attrs, slog.Any("error", e.Err))...)
		return nil
	}
	lg.DebugContext(ctx, "tool call finished", attrs...)
	return nil
}

// OnStepFinish logs a completed step with its usage.
func (l *LogListener) OnStepFinish(ctx context.Context, e *StepFinishEvent) error {
	l.with(e.Info).InfoContext(ctx, "step finished",
		slog.Int("step", e.Step.Number),
		slog.String("finish_reason", string(e.Step.FinishReason)),
		slog.Int("tool_calls", len(e.Step.ToolCalls())),
		slog.Int("input_tokens", e.Step.Usage.InputTokens),
		slog.Int("output_tokens", e.Step.Usage.OutputTokens),
	)
	return nil
}

// OnRunFinish logs the end of a run.
func (l *LogListener) OnRunFinish(ctx context.Context, e *RunFinishEvent) error {
	lg := l.with(e.Info)
	attrs := []any{
		slog.Int("steps", len(e.Steps)),
		slog.Int("total_tokens", e.TotalUsage.TotalTokens),
		slog.Duration("duration", e.Duration),
	}
	if e.Err != nil {
		lg.WarnContext(ctx, "run failed", append(attrs, slog.Any("error", e.Err))...)
		return nil
	}
	lg.InfoContext(ctx, "run finished", append(attrs, slog.String("finish_reason", string(e.FinishReason())))...)
	return nil
}
