package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/store"
	"github.com/spetersoncode/stepwise/telemetry"
	"github.com/spetersoncode/stepwise/tool"
)

// Agent orchestrates multi-step tool-calling conversations with a model.
type Agent struct {
	model    ai.LanguageModel
	registry *tool.Registry
	defaults []Option
}

// New creates an Agent for the given model and tool registry. A nil registry
// offers no tools. Options given here apply to every run and may be
// overridden per run.
func New(model ai.LanguageModel, registry *tool.Registry, opts ...Option) *Agent {
	if registry == nil {
		registry = tool.NewRegistry()
	}
	return &Agent{
		model:    model,
		registry: registry,
		defaults: opts,
	}
}

// Model returns the agent's default model.
func (a *Agent) Model() ai.LanguageModel {
	return a.model
}

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tool.Registry {
	return a.registry
}

// run holds the state of a single Run call.
type run struct {
	agent    *Agent
	opts     *Options
	id       string
	parent   context.Context
	tc       *timeoutController
	notifier *telemetry.Notifier

	model     ai.LanguageModel
	ctxValue  any
	steps     []ai.Step
	responses *store.MessageStore
}

// Run executes the step loop until a stop condition fires, the model
// finishes without pending tool calls, or the run is cancelled. Either
// messages or WithPrompt must be supplied.
//
// On failure the returned Result holds the steps completed before the error.
func (a *Agent) Run(ctx context.Context, messages []ai.Message, opts ...Option) (*Result, error) {
	options := ApplyOptions(append(slices.Clone(a.defaults), opts...)...)

	initial, err := initialMessages(messages, options.Prompt)
	if err != nil {
		return nil, err
	}

	listeners := append(slices.Clone(options.Listeners), options.Callbacks...)
	r := &run{
		agent:     a,
		opts:      options,
		id:        options.IDGenerator(),
		parent:    ctx,
		tc:        newTimeoutController(ctx, options.Timeouts),
		notifier:  telemetry.NewNotifier(options.Registry, listeners...),
		model:     a.model,
		ctxValue:  options.Context,
		responses: store.NewMessageStore(nil),
	}
	defer r.tc.close()

	start := options.Now()
	r.notifier.RunStart(ctx, func() *telemetry.RunStartEvent {
		return &telemetry.RunStartEvent{
			Info:     r.info(a.model),
			System:   options.System,
			Messages: initial,
			Tools:    a.registry.Names(),
			Start:    start,
		}
	})

	err = r.loop(initial)

	result := r.result()
	r.notifier.RunFinish(ctx, func() *telemetry.RunFinishEvent {
		return &telemetry.RunFinishEvent{
			Info:       r.info(r.model),
			Steps:      result.Steps,
			TotalUsage: result.TotalUsage,
			Duration:   options.Now().Sub(start),
			Err:        err,
		}
	})
	return result, err
}

func initialMessages(messages []ai.Message, prompt string) ([]ai.Message, error) {
	switch {
	case prompt != "" && len(messages) > 0:
		return nil, fmt.Errorf("%w: got both", ai.ErrInvalidPrompt)
	case prompt != "":
		return []ai.Message{ai.NewUserMessage(prompt)}, nil
	case len(messages) == 0:
		return nil, fmt.Errorf("%w: %w", ai.ErrInvalidPrompt, ai.ErrEmptyInput)
	}
	return ai.CloneMessages(messages), nil
}

func (r *run) loop(initial []ai.Message) error {
	if err := r.resolveApprovals(initial); err != nil {
		return err
	}
	for {
		if err := r.tc.Err(); err != nil {
			return err
		}
		more, err := r.step(initial)
		if err != nil || !more {
			return err
		}
	}
}

// step performs one model call and resolves its tool calls. It reports
// whether the loop should continue.
func (r *run) step(initial []ai.Message) (bool, error) {
	number := len(r.steps)
	model := r.agent.model
	messages := append(slices.Clone(initial), r.responses.Messages()...)
	active := r.opts.ActiveTools
	choice := r.opts.ToolChoice
	system := r.opts.System

	if r.opts.PrepareStep != nil {
		prep, err := r.opts.PrepareStep(r.tc.Context(), PrepareStepInput{
			Model:      model,
			Steps:      slices.Clone(r.steps),
			StepNumber: number,
			Messages:   messages,
			Context:    r.ctxValue,
		})
		if err != nil {
			return false, r.stepError(number, err)
		}
		if prep != nil {
			if prep.Model != nil {
				model = prep.Model
			}
			if prep.Messages != nil {
				messages = prep.Messages
			}
			if prep.ActiveTools != nil {
				active = prep.ActiveTools
			}
			if prep.ToolChoice != "" {
				choice = prep.ToolChoice
			}
			if prep.System != "" {
				system = prep.System
			}
			if prep.Context != nil {
				r.ctxValue = prep.Context
			}
		}
	}
	r.model = model

	// A non-nil empty list disables every tool for this step.
	names := []string{}
	if active == nil || len(active) > 0 {
		var err error
		names, err = r.agent.registry.Select(active...)
		if err != nil {
			return false, err
		}
	}
	defs := r.agent.registry.Definitions(names)

	sent := messages
	if system != "" {
		sent = append([]ai.Message{ai.NewSystemMessage(system)}, messages...)
	}

	ctx := r.tc.beginStep()
	defer r.tc.endStep()

	r.notifier.StepStart(r.parent, func() *telemetry.StepStartEvent {
		return &telemetry.StepStartEvent{
			Info:          r.info(model),
			Step:          number,
			Messages:      sent,
			ActiveTools:   names,
			ToolChoice:    choice,
			PreviousSteps: slices.Clone(r.steps),
		}
	})

	resp, err := model.Generate(ctx, sent, r.modelOptions(defs, choice)...)
	if err == nil && resp == nil {
		err = errors.New("model returned no response")
	}
	if err != nil {
		return false, r.stepError(number, err)
	}

	calls := r.parseCalls(ctx, resp.Content, names, system, sent, defs)
	outcomes := r.executeCalls(ctx, number, calls, sent)
	if err := r.tc.Err(); err != nil {
		return false, err
	}
	r.applyContextUpdates(outcomes)

	content := assembleContent(resp.Content, calls, outcomes)
	step := ai.Step{
		Number:          number,
		Provider:        model.Provider(),
		ModelID:         model.ModelID(),
		Messages:        sent,
		Content:         content,
		FinishReason:    resp.FinishReason,
		RawFinishReason: resp.RawFinishReason,
		Usage:           resp.Usage,
		Response:        r.responseMetadata(resp.Metadata, model),
		Warnings:        resp.Warnings,
	}
	r.steps = append(r.steps, step)

	r.notifier.StepFinish(r.parent, func() *telemetry.StepFinishEvent {
		return &telemetry.StepFinishEvent{Info: r.info(model), Step: step}
	})

	stop := stopConditionMet(r.opts.StopWhen, slices.Clone(r.steps))
	r.responses.Append(toResponseMessages(content)...)

	clientCalls, answered := 0, 0
	for i, c := range calls {
		if c.ProviderExecuted {
			continue
		}
		clientCalls++
		if outcomes[i].hasOutput() {
			answered++
		}
	}

	return resp.FinishReason == ai.FinishToolCalls &&
		clientCalls > 0 &&
		answered == clientCalls &&
		!stop, nil
}

// stepError wraps a step failure, reporting cancellation when the run
// context is done.
func (r *run) stepError(step int, err error) error {
	if cerr := r.tc.Err(); cerr != nil {
		return cerr
	}
	return &ai.StepError{Step: step, Err: err}
}

func (r *run) modelOptions(defs []ai.ToolDefinition, choice ai.ToolChoice) []ai.Option {
	opts := slices.Clone(r.opts.ModelOptions)
	if len(defs) > 0 {
		opts = append(opts, ai.WithTools(defs))
	}
	if choice != "" {
		opts = append(opts, ai.WithToolChoice(choice))
	}
	if r.opts.Output != nil {
		if schema := r.opts.Output.ResponseSchema(); schema != nil {
			opts = append(opts, ai.WithResponseSchema(schema))
		}
	}
	return opts
}

// parseCalls validates the tool calls of a response in order. Calls that
// cannot be parsed, even after repair, are marked invalid.
func (r *run) parseCalls(ctx context.Context, content []ai.ContentPart, available []string, system string, messages []ai.Message, defs []ai.ToolDefinition) []ai.ToolCall {
	var calls []ai.ToolCall
	for _, p := range content {
		if p.Type != ai.PartToolCall || p.ToolCall == nil {
			continue
		}
		call := *p.ToolCall
		if call.ProviderExecuted {
			call.Input = decodeArguments(call.Arguments)
			calls = append(calls, call)
			continue
		}

		parsed, err := r.agent.registry.Parse(call, available)
		if err != nil && r.opts.RepairToolCall != nil {
			repaired, rerr := r.opts.RepairToolCall(ctx, RepairInput{
				Call:     call,
				Err:      err,
				System:   system,
				Messages: messages,
				Tools:    defs,
			})
			if rerr == nil && repaired != nil {
				parsed, err = r.agent.registry.Parse(*repaired, available)
			}
		}
		if err != nil {
			call.Invalid = true
			call.Err = err
			call.Input = decodeArguments(call.Arguments)
			calls = append(calls, call)
			continue
		}
		calls = append(calls, parsed)
	}
	return calls
}

// decodeArguments returns the decoded JSON arguments, or the raw string when
// they are not valid JSON.
func decodeArguments(args string) any {
	var v any
	if err := json.Unmarshal([]byte(args), &v); err != nil {
		return args
	}
	return v
}

// responseMetadata fills the defaults a provider may leave out.
func (r *run) responseMetadata(md ai.ResponseMetadata, model ai.LanguageModel) ai.ResponseMetadata {
	if md.ID == "" {
		md.ID = r.opts.IDGenerator()
	}
	if md.Timestamp.IsZero() {
		md.Timestamp = r.opts.Now()
	}
	if md.ModelID == "" {
		md.ModelID = model.ModelID()
	}
	return md
}

func (r *run) info(model ai.LanguageModel) telemetry.Info {
	return telemetry.Info{
		RunID:      r.id,
		Provider:   model.Provider(),
		ModelID:    model.ModelID(),
		FunctionID: r.opts.Telemetry.FunctionID,
		Metadata:   r.opts.Telemetry.Metadata,
		Context:    r.ctxValue,
	}
}

func (r *run) result() *Result {
	steps := slices.Clone(r.steps)
	return &Result{
		Steps:            steps,
		TotalUsage:       ai.SumUsage(steps),
		ResponseMessages: r.responses.Messages(),
		Context:          r.ctxValue,
		output:           r.opts.Output,
	}
}
