package agent

import (
	"context"
	"fmt"
	"sync"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/telemetry"
	"github.com/spetersoncode/stepwise/tool"
)

// outcome is the resolution of one tool call. A zero part means the call
// produced nothing the model can see yet (provider-executed, client tool, or
// skipped after cancellation).
type outcome struct {
	part   ai.ContentPart
	update *tool.ContextUpdate
}

// hasOutput reports whether the call was answered with a result or an error.
func (o outcome) hasOutput() bool {
	return o.part.Type == ai.PartToolResult || o.part.Type == ai.PartToolError
}

func errorOutcome(call ai.ToolCall, err error) outcome {
	return outcome{part: ai.NewToolErrorPart(ai.NewToolError(call, err))}
}

// job is a tool call cleared for execution.
type job struct {
	index int
	call  ai.ToolCall
	tool  tool.Tool
}

// executeCalls classifies the calls of a step and runs the executable ones.
// Outcomes are returned in call order regardless of completion order.
func (r *run) executeCalls(ctx context.Context, step int, calls []ai.ToolCall, messages []ai.Message) []outcome {
	outcomes := make([]outcome, len(calls))
	var jobs []job

	for i, call := range calls {
		if call.ProviderExecuted {
			continue
		}
		if call.Invalid {
			outcomes[i] = errorOutcome(call, call.Err)
			continue
		}
		t, ok := r.agent.registry.Get(call.Name)
		if !ok {
			outcomes[i] = errorOutcome(call, &tool.ErrToolNotFound{Name: call.Name})
			continue
		}
		if t.NeedsApproval != nil {
			needs, err := t.NeedsApproval(ctx, call.Input, r.callOptions(call, messages))
			if err != nil {
				outcomes[i] = errorOutcome(call, err)
				continue
			}
			if needs {
				outcomes[i] = outcome{part: ai.NewApprovalRequestPart(ai.ApprovalRequest{
					ApprovalID:    r.opts.IDGenerator(),
					ToolCall:      call,
					InputEditable: t.InputEditable,
				})}
				continue
			}
		}
		if !t.Executable() {
			continue
		}
		jobs = append(jobs, job{index: i, call: call, tool: t})
	}

	results := r.runJobs(ctx, step, jobs, messages)
	for j, jb := range jobs {
		outcomes[jb.index] = results[j]
	}
	return outcomes
}

// runJobs executes jobs, concurrently unless disabled, and fans results in
// by job index.
func (r *run) runJobs(ctx context.Context, step int, jobs []job, messages []ai.Message) []outcome {
	results := make([]outcome, len(jobs))
	if !r.opts.ParallelToolCalls || len(jobs) <= 1 {
		for i, jb := range jobs {
			results[i] = r.execute(ctx, step, jb, messages)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, jb := range jobs {
		wg.Add(1)
		go func(idx int, jb job) {
			defer wg.Done()
			results[idx] = r.execute(ctx, step, jb, messages)
		}(i, jb)
	}
	wg.Wait()
	return results
}

// execute runs a single tool call with telemetry and panic recovery.
func (r *run) execute(ctx context.Context, step int, jb job, messages []ai.Message) outcome {
	if ctx.Err() != nil {
		return outcome{}
	}
	call := jb.call
	opts := r.callOptions(call, messages)
	info := r.info(r.model)

	r.notifier.ToolCallStart(r.parent, func() *telemetry.ToolCallStartEvent {
		return &telemetry.ToolCallStartEvent{Info: info, Step: step, Call: call, Messages: messages}
	})

	execCtx := ctx
	if r.opts.ToolTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, r.opts.ToolTimeout)
		defer cancel()
	}

	start := r.opts.Now()
	output, err := invoke(execCtx, jb.tool, call.Input, opts)

	var update *tool.ContextUpdate
	switch u := output.(type) {
	case tool.ContextUpdate:
		update, output = &u, u.Output
	case *tool.ContextUpdate:
		if u != nil {
			update, output = u, u.Output
		}
	}

	duration := r.opts.Now().Sub(start)
	r.notifier.ToolCallFinish(r.parent, func() *telemetry.ToolCallFinishEvent {
		return &telemetry.ToolCallFinishEvent{Info: info, Step: step, Call: call, Duration: duration, Output: output, Err: err}
	})

	if err != nil {
		return errorOutcome(call, err)
	}
	return outcome{
		part: ai.NewToolResultPart(ai.ToolResult{
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Input:      call.Input,
			Output:     output,
			Dynamic:    call.Dynamic,
		}),
		update: update,
	}
}

// invoke calls the tool, keeping only the last value of a stream.
func invoke(ctx context.Context, t tool.Tool, input any, opts tool.CallOptions) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, &tool.ErrToolExecution{Name: t.Name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	if t.Stream != nil {
		for v, serr := range t.Stream(ctx, input, opts) {
			if serr != nil {
				return nil, serr
			}
			out = v
		}
		return out, nil
	}
	return t.Execute(ctx, input, opts)
}

func (r *run) callOptions(call ai.ToolCall, messages []ai.Message) tool.CallOptions {
	return tool.CallOptions{
		ToolCallID: call.ID,
		Messages:   messages,
		Context:    r.ctxValue,
	}
}

// applyContextUpdates replaces the context value with each update in call order.
func (r *run) applyContextUpdates(outcomes []outcome) {
	for _, o := range outcomes {
		if o.update != nil {
			r.ctxValue = o.update.Context
		}
	}
}
