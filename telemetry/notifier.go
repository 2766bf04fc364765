package telemetry

import (
	"context"
	"sync"
)

// Notifier broadcasts lifecycle events of one run. Listeners are called one
// at a time, in order, even when events come from concurrent tool
// executions. Listener errors and panics never reach the run.
type Notifier struct {
	mu        sync.Mutex
	listeners []any
}

// NewNotifier snapshots the global registry and appends the per-run
// listeners and callbacks, in that order. A nil registry is skipped.
func NewNotifier(global *Registry, listeners ...any) *Notifier {
	var all []any
	if global != nil {
		all = global.Listeners()
	}
	for _, l := range listeners {
		if l != nil {
			all = append(all, l)
		}
	}
	return &Notifier{listeners: all}
}

// Len returns the number of listeners.
func (n *Notifier) Len() int {
	if n == nil {
		return 0
	}
	return len(n.listeners)
}

// dispatch calls fn on every listener implementing L. The event is built on
// first use, so nothing is allocated when no listener implements the hook.
func dispatch[L any, E any](ctx context.Context, n *Notifier, build func() *E, fn func(L, context.Context, *E) error) {
	if n == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	var ev *E
	for _, l := range n.listeners {
		h, ok := l.(L)
		if !ok {
			continue
		}
		if ev == nil {
			ev = build()
		}
		safeCall(func() error { return fn(h, ctx, ev) })
	}
}

func safeCall(fn func() error) {
	defer func() { _ = recover() }()
	_ = fn()
}

// RunStart notifies RunStartListeners.
func (n *Notifier) RunStart(ctx context.Context, build func() *RunStartEvent) {
	dispatch(ctx, n, build, RunStartListener.OnRunStart)
}

// StepStart notifies StepStartListeners.
func (n *Notifier) StepStart(ctx context.Context, build func() *StepStartEvent) {
	dispatch(ctx, n, build, StepStartListener.OnStepStart)
}

// ToolCallStart notifies ToolCallStartListeners.
func (n *Notifier) ToolCallStart(ctx context.Context, build func() *ToolCallStartEvent) {
	dispatch(ctx, n, build, ToolCallStartListener.OnToolCallStart)
}

// ToolCallFinish notifies ToolCallFinishListeners.
func (n *Notifier) ToolCallFinish(ctx context.Context, build func() *ToolCallFinishEvent) {
	dispatch(ctx, n, build, ToolCallFinishListener.OnToolCallFinish)
}

// StepFinish notifies StepFinishListeners.
func (n *Notifier) StepFinish(ctx context.Context, build func() *StepFinishEvent) {
	dispatch(ctx, n, build, StepFinishListener.OnStepFinish)
}

// RunFinish notifies RunFinishListeners.
func (n *Notifier) RunFinish(ctx context.Context, build func() *RunFinishEvent) {
	dispatch(ctx, n, build, RunFinishListener.OnRunFinish)
}
