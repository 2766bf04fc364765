package telemetry

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/spetersoncode/stepwise"

// OTelOption configures an OTelListener.
type OTelOption func(*otelOptions)

type otelOptions struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	recordIO       bool
}

// WithTracerProvider sets the tracer provider. Defaults to the global one.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(o *otelOptions) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. Defaults to the global one.
func WithMeterProvider(mp metric.MeterProvider) OTelOption {
	return func(o *otelOptions) {
		o.meterProvider = mp
	}
}

// WithRecordIO adds final step text and tool inputs as span attributes.
func WithRecordIO() OTelOption {
	return func(o *otelOptions) {
		o.recordIO = true
	}
}

// OTelListener records runs as spans (ai.run > ai.step > ai.toolCall) and
// emits run, step, tool and token metrics. One listener may observe many
// concurrent runs.
type OTelListener struct {
	tracer   trace.Tracer
	recordIO bool

	runs         metric.Int64Counter
	steps        metric.Int64Counter
	toolCalls    metric.Int64Counter
	tokens       metric.Int64Counter
	toolDuration metric.Float64Histogram
	runDuration  metric.Float64Histogram

	mu    sync.Mutex
	spans map[string]spanEntry
}

type spanEntry struct {
	ctx  context.Context
	span trace.Span
}

// NewOTelListener creates a listener using the configured providers.
func NewOTelListener(opts ...OTelOption) (*OTelListener, error) {
	o := &otelOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.tracerProvider == nil {
		o.tracerProvider = otel.GetTracerProvider()
	}
	if o.meterProvider == nil {
		o.meterProvider = otel.GetMeterProvider()
	}
	meter := o.meterProvider.Meter(instrumentationName)

	l := &OTelListener{
		tracer:   o.tracerProvider.Tracer(instrumentationName),
		recordIO: o.recordIO,
		spans:    make(map[string]spanEntry),
	}

	var err error
	if l.runs, err = meter.Int64Counter("ai.runs", metric.WithDescription("Completed runs")); err != nil {
		return nil, err
	}
	if l.steps, err = meter.Int64Counter("ai.steps", metric.WithDescription("Completed steps")); err != nil {
		return nil, err
	}
	if l.toolCalls, err = meter.Int64Counter("ai.tool_calls", metric.WithDescription("Executed tool calls")); err != nil {
		return nil, err
	}
	if l.tokens, err = meter.Int64Counter("ai.tokens", metric.WithDescription("Tokens used"), metric.WithUnit("{token}")); err != nil {
		return nil, err
	}
	if l.toolDuration, err = meter.Float64Histogram("ai.tool_call.duration", metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if l.runDuration, err = meter.Float64Histogram("ai.run.duration", metric.WithUnit("s")); err != nil {
		return nil, err
	}
	return l, nil
}

func runKey(runID string) string            { return "run/" + runID }
func stepKey(runID string, step int) string { return "step/" + runID + "/" + strconv.Itoa(step) }
func toolKey(runID, callID string) string   { return "tool/" + runID + "/" + callID }

// start opens a span under the first of parentKeys that is still open.
func (l *OTelListener) start(ctx context.Context, parentKeys []string, key, name string, attrs ...attribute.KeyValue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, pk := range parentKeys {
		if parent, ok := l.spans[pk]; ok {
			ctx = parent.ctx
			break
		}
	}
	spanCtx, span := l.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	l.spans[key] = spanEntry{ctx: spanCtx, span: span}
}

func (l *OTelListener) take(key string) (trace.Span, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.spans[key]
	if ok {
		delete(l.spans, key)
	}
	return e.span, ok
}

func infoAttrs(i Info) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("ai.run.id", i.RunID),
		attribute.String("ai.model.provider", i.Provider),
		attribute.String("ai.model.id", i.ModelID),
	}
	if i.FunctionID != "" {
		attrs = append(attrs, attribute.String("ai.telemetry.function_id", i.FunctionID))
	}
	for k, v := range i.Metadata {
		if s, ok := v.(string); ok {
			attrs = append(attrs, attribute.String("ai.telemetry.metadata."+k, s))
		}
	}
	return attrs
}

func endWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// OnRunStart opens the run span.
func (l *OTelListener) OnRunStart(ctx context.Context, e *RunStartEvent) error {
	attrs := append(infoAttrs(e.Info), attribute.StringSlice("ai.tools", e.Tools))
	l.start(ctx, nil, runKey(e.RunID), "ai.run", attrs...)
	return nil
}

// OnStepStart opens a step span under the run span.
func (l *OTelListener) OnStepStart(ctx context.Context, e *StepStartEvent) error {
	attrs := append(infoAttrs(e.Info),
		attribute.Int("ai.step.number", e.Step),
		attribute.StringSlice("ai.step.active_tools", e.ActiveTools),
	)
	if e.ToolChoice != "" {
		attrs = append(attrs, attribute.String("ai.step.tool_choice", string(e.ToolChoice)))
	}
	l.start(ctx, []string{runKey(e.RunID)}, stepKey(e.RunID, e.Step), "ai.step", attrs...)
	return nil
}

// OnToolCallStart opens a tool span under the step span.
func (l *OTelListener) OnToolCallStart(ctx context.Context, e *ToolCallStartEvent) error {
	attrs := append(infoAttrs(e.Info),
		attribute.String("ai.tool_call.id", e.Call.ID),
		attribute.String("ai.tool_call.name", e.Call.Name),
	)
	if l.recordIO {
		attrs = append(attrs, attribute.String("ai.tool_call.input", e.Call.Arguments))
	}
	// Approved calls resolved before the first step have no step span.
	parents := []string{stepKey(e.RunID, e.Step), runKey(e.RunID)}
	l.start(ctx, parents, toolKey(e.RunID, e.Call.ID), "ai.toolCall", attrs...)
	return nil
}

// OnToolCallFinish closes the tool span and records tool metrics.
func (l *OTelListener) OnToolCallFinish(ctx context.Context, e *ToolCallFinishEvent) error {
	outcome := "success"
	if e.Err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("ai.tool_call.name", e.Call.Name),
		attribute.String("outcome", outcome),
	)
	l.toolCalls.Add(ctx, 1, attrs)
	l.toolDuration.Record(ctx, e.Duration.Seconds(), attrs)

	if span, ok := l.take(toolKey(e.RunID, e.Call.ID)); ok {
		span.SetAttributes(attribute.Int64("ai.tool_call.duration_ms", e.Duration.Milliseconds()))
		endWithError(span, e.Err)
	}
	return nil
}

// OnStepFinish closes the step span and records token usage.
func (l *OTelListener) OnStepFinish(ctx context.Context, e *StepFinishEvent) error {
	model := metric.WithAttributes(
		attribute.String("ai.model.provider", e.Provider),
		attribute.String("ai.model.id", e.ModelID),
	)
	l.steps.Add(ctx, 1, metric.WithAttributes(attribute.String("ai.finish_reason", string(e.Step.FinishReason))))
	l.tokens.Add(ctx, int64(e.Step.Usage.InputTokens), model, metric.WithAttributes(attribute.String("ai.token.type", "input")))
	l.tokens.Add(ctx, int64(e.Step.Usage.OutputTokens), model, metric.WithAttributes(attribute.String("ai.token.type", "output")))

	span, ok := l.take(stepKey(e.RunID, e.Step.Number))
	if !ok {
		return nil
	}
	span.SetAttributes(
		attribute.String("ai.response.finish_reason", string(e.Step.FinishReason)),
		attribute.String("ai.response.id", e.Step.Response.ID),
		attribute.Int("ai.usage.input_tokens", e.Step.Usage.InputTokens),
		attribute.Int("ai.usage.output_tokens", e.Step.Usage.OutputTokens),
		attribute.Int("ai.response.tool_calls", len(e.Step.ToolCalls())),
	)
	if l.recordIO {
		span.SetAttributes(attribute.String("ai.response.text", e.Step.Text()))
	}
	endWithError(span, nil)
	return nil
}

// OnRunFinish closes any open spans of the run and records run metrics.
func (l *OTelListener) OnRunFinish(ctx context.Context, e *RunFinishEvent) error {
	outcome := "success"
	if e.Err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("ai.model.provider", e.Provider),
		attribute.String("outcome", outcome),
	)
	l.runs.Add(ctx, 1, attrs)
	l.runDuration.Record(ctx, e.Duration.Seconds(), attrs)

	// A failed step never reaches OnStepFinish.
	l.mu.Lock()
	var dangling []trace.Span
	for k, s := range l.spans {
		if strings.HasPrefix(k, "step/"+e.RunID+"/") || strings.HasPrefix(k, "tool/"+e.RunID+"/") {
			dangling = append(dangling, s.span)
			delete(l.spans, k)
		}
	}
	l.mu.Unlock()
	for _, s := range dangling {
		endWithError(s, e.Err)
	}

	span, ok := l.take(runKey(e.RunID))
	if !ok {
		return nil
	}
	span.SetAttributes(
		attribute.Int("ai.run.steps", len(e.Steps)),
		attribute.Int("ai.usage.input_tokens", e.TotalUsage.InputTokens),
		attribute.Int("ai.usage.output_tokens", e.TotalUsage.OutputTokens),
		attribute.String("ai.response.finish_reason", string(e.FinishReason())),
	)
	endWithError(span, e.Err)
	return nil
}
