package agent

import (
	"context"
	"time"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/telemetry"
)

// PrepareStepInput is passed to the PrepareStep hook before each model call.
type PrepareStepInput struct {
	Model      ai.LanguageModel
	Steps      []ai.Step
	StepNumber int
	// Messages is the conversation the step would send, without the system prompt.
	Messages []ai.Message
	Context  any
}

// PrepareStepResult overrides settings for a single step. Zero fields keep
// the run's settings. A non-nil Context replaces the context value for this
// and all later steps. A non-nil empty ActiveTools disables every tool for
// the step.
type PrepareStepResult struct {
	Model       ai.LanguageModel
	Messages    []ai.Message
	ActiveTools []string
	ToolChoice  ai.ToolChoice
	System      string
	Context     any
}

// PrepareStepFunc customizes a step before the model is called. Returning
// nil keeps the run's settings; an error ends the run.
type PrepareStepFunc func(ctx context.Context, in PrepareStepInput) (*PrepareStepResult, error)

// RepairInput describes a tool call that failed to parse.
type RepairInput struct {
	Call     ai.ToolCall
	Err      error
	System   string
	Messages []ai.Message
	Tools    []ai.ToolDefinition
}

// RepairFunc attempts to fix an unparseable tool call. Returning nil leaves
// the call invalid.
type RepairFunc func(ctx context.Context, in RepairInput) (*ai.ToolCall, error)

// TelemetrySettings identifies a run in telemetry events.
type TelemetrySettings struct {
	FunctionID string
	Metadata   map[string]any
}

// Options contains configuration for a run.
type Options struct {
	// Prompt is a single user message used instead of the messages argument.
	Prompt string
	// System is sent as a leading system message on every step.
	System string

	// StopWhen holds the stop conditions. When empty, the run stops after
	// DefaultMaxSteps steps.
	StopWhen []StopCondition

	Timeouts Timeouts

	// ToolTimeout bounds each tool execution. Zero means no limit.
	ToolTimeout time.Duration

	// ParallelToolCalls runs the tool calls of a step concurrently.
	// Default is true.
	ParallelToolCalls bool

	// ActiveTools limits the tools offered to the model. Entries are exact
	// names or glob patterns; empty offers every registered tool.
	ActiveTools []string
	ToolChoice  ai.ToolChoice

	PrepareStep    PrepareStepFunc
	RepairToolCall RepairFunc

	// Context is the caller context value handed to tools and listeners.
	Context any

	// Listeners receive lifecycle events for this run, after the global
	// registry's listeners.
	Listeners []any
	// Callbacks receive lifecycle events after Listeners.
	Callbacks []any
	// Registry is the global listener registry. Default is telemetry.Default.
	Registry *telemetry.Registry

	Telemetry TelemetrySettings

	IDGenerator ai.IDGenerator
	Now         func() time.Time

	// Output parses structured output from the final step.
	Output Output

	// ModelOptions are passed through to every model call.
	ModelOptions []ai.Option
}

// Option is a functional option for configuring a run.
type Option func(*Options)

// WithPrompt runs the agent on a single user message.
func WithPrompt(prompt string) Option {
	return func(o *Options) {
		o.Prompt = prompt
	}
}

// WithSystem sets the system prompt.
func WithSystem(system string) Option {
	return func(o *Options) {
		o.System = system
	}
}

// WithStopWhen adds stop conditions. The run stops when any of them reports true.
func WithStopWhen(conds ...StopCondition) Option {
	return func(o *Options) {
		o.StopWhen = append(o.StopWhen, conds...)
	}
}

// WithMaxSteps is shorthand for WithStopWhen(StepCountIs(n)).
func WithMaxSteps(n int) Option {
	return WithStopWhen(StepCountIs(n))
}

// WithTimeout sets a deadline for the entire run.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeouts.Total = d
	}
}

// WithTimeouts sets the total, per-step and per-chunk budgets.
func WithTimeouts(t Timeouts) Option {
	return func(o *Options) {
		o.Timeouts = t
	}
}

// WithToolTimeout bounds each tool execution.
func WithToolTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ToolTimeout = d
	}
}

// WithParallelToolCalls enables or disables concurrent tool execution.
// Default is true.
func WithParallelToolCalls(enabled bool) Option {
	return func(o *Options) {
		o.ParallelToolCalls = enabled
	}
}

// WithActiveTools limits the tools offered to the model to those matching
// the given names or glob patterns.
func WithActiveTools(patterns ...string) Option {
	return func(o *Options) {
		o.ActiveTools = patterns
	}
}

// WithToolChoice controls whether and which tools the model calls.
func WithToolChoice(choice ai.ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// WithPrepareStep sets a hook that can override settings per step.
func WithPrepareStep(fn PrepareStepFunc) Option {
	return func(o *Options) {
		o.PrepareStep = fn
	}
}

// WithRepairToolCall sets a hook that can fix tool calls with unknown names
// or invalid input.
func WithRepairToolCall(fn RepairFunc) Option {
	return func(o *Options) {
		o.RepairToolCall = fn
	}
}

// WithContext sets the caller context value handed to tools and listeners.
func WithContext(v any) Option {
	return func(o *Options) {
		o.Context = v
	}
}

// WithListeners adds run-scoped telemetry listeners.
func WithListeners(listeners ...any) Option {
	return func(o *Options) {
		o.Listeners = append(o.Listeners, listeners...)
	}
}

// WithRegistry replaces the global listener registry for this run.
func WithRegistry(r *telemetry.Registry) Option {
	return func(o *Options) {
		o.Registry = r
	}
}

// WithOnStepFinish sets a callback invoked after each step, after listeners.
func WithOnStepFinish(fn func(ctx context.Context, step ai.Step)) Option {
	return func(o *Options) {
		o.Callbacks = append(o.Callbacks, telemetry.StepFinishFunc(func(ctx context.Context, e *telemetry.StepFinishEvent) error {
			fn(ctx, e.Step)
			return nil
		}))
	}
}

// WithOnFinish sets a callback invoked once when the run ends, after listeners.
func WithOnFinish(fn func(ctx context.Context, e *telemetry.RunFinishEvent)) Option {
	return func(o *Options) {
		o.Callbacks = append(o.Callbacks, telemetry.RunFinishFunc(func(ctx context.Context, e *telemetry.RunFinishEvent) error {
			fn(ctx, e)
			return nil
		}))
	}
}

// WithTelemetry sets the function ID and metadata carried by every event.
func WithTelemetry(functionID string, metadata map[string]any) Option {
	return func(o *Options) {
		o.Telemetry = TelemetrySettings{FunctionID: functionID, Metadata: metadata}
	}
}

// WithIDGenerator sets the generator for run, approval and response IDs.
func WithIDGenerator(gen ai.IDGenerator) Option {
	return func(o *Options) {
		o.IDGenerator = gen
	}
}

// WithOutput requests structured output parsed from the final step.
func WithOutput(out Output) Option {
	return func(o *Options) {
		o.Output = out
	}
}

// WithModelOptions passes options through to every model call.
func WithModelOptions(opts ...ai.Option) Option {
	return func(o *Options) {
		o.ModelOptions = append(o.ModelOptions, opts...)
	}
}

// WithMaxTokens is a convenience option to set max tokens for model calls.
func WithMaxTokens(n int) Option {
	return WithModelOptions(ai.WithMaxTokens(n))
}

// WithTemperature is a convenience option to set temperature for model calls.
func WithTemperature(t float64) Option {
	return WithModelOptions(ai.WithTemperature(t))
}

// ApplyOptions applies functional options with defaults.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{
		ParallelToolCalls: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.StopWhen) == 0 {
		o.StopWhen = []StopCondition{StepCountIs(DefaultMaxSteps)}
	}
	if o.Registry == nil {
		o.Registry = telemetry.Default
	}
	if o.IDGenerator == nil {
		o.IDGenerator = ai.NewID
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
