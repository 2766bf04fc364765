package agent

import (
	"context"
	"sync"
	"time"

	ai "github.com/spetersoncode/stepwise"
)

// Timeouts bounds the duration of a run.
type Timeouts struct {
	// Total bounds the whole run.
	Total time.Duration
	// Step bounds each step, including its tool executions. The budget is
	// re-armed at the start of every step.
	Step time.Duration
	// Chunk is accepted for compatibility with streaming runs and ignored.
	Chunk time.Duration
}

// timeoutController owns the cancellation context of a run. A single derived
// context is handed to every step; the total and per-step timers cancel it
// with distinct causes.
type timeoutController struct {
	ctx    context.Context
	cancel context.CancelCauseFunc

	step time.Duration

	mu        sync.Mutex
	total     *time.Timer
	stepTimer *time.Timer
}

func newTimeoutController(parent context.Context, t Timeouts) *timeoutController {
	ctx, cancel := context.WithCancelCause(parent)
	tc := &timeoutController{ctx: ctx, cancel: cancel, step: t.Step}
	if t.Total > 0 {
		tc.total = time.AfterFunc(t.Total, func() { cancel(ai.ErrTotalTimeout) })
	}
	return tc
}

// Context returns the run context.
func (tc *timeoutController) Context() context.Context {
	return tc.ctx
}

// beginStep re-arms the per-step timer and returns the run context.
func (tc *timeoutController) beginStep() context.Context {
	if tc.step <= 0 {
		return tc.ctx
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.stepTimer != nil {
		tc.stepTimer.Stop()
	}
	tc.stepTimer = time.AfterFunc(tc.step, func() { tc.cancel(ai.ErrStepTimeout) })
	return tc.ctx
}

// endStep disarms the per-step timer.
func (tc *timeoutController) endStep() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.stepTimer != nil {
		tc.stepTimer.Stop()
		tc.stepTimer = nil
	}
}

// Err returns the cancellation error of the run, or nil while it is live.
// The cause of a cancelled parent takes priority over the run's own timers.
func (tc *timeoutController) Err() error {
	if tc.ctx.Err() == nil {
		return nil
	}
	return &ai.CancelError{Cause: context.Cause(tc.ctx)}
}

// close stops all timers and releases the context.
func (tc *timeoutController) close() {
	tc.endStep()
	if tc.total != nil {
		tc.total.Stop()
	}
	tc.cancel(context.Canceled)
}
