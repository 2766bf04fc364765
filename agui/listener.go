package agui

import (
	"context"
	"strconv"
	"sync"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/telemetry"
)

// ApprovalEventName is the name of the CUSTOM event emitted for each pending
// tool approval. Its value is the ai.ApprovalRequest.
const ApprovalEventName = "tool_approval_request"

// Option configures a Listener.
type Option func(*Listener)

// WithStateSnapshots emits a STATE_SNAPSHOT of the run's context value when
// the run finishes.
func WithStateSnapshots() Option {
	return func(l *Listener) { l.snapshots = true }
}

// Listener converts run lifecycle events to AG-UI events and hands them to
// emit in order. Register one Listener per run:
//
//	l := agui.NewListener(threadID, runID, send)
//	result, err := a.Run(ctx, messages, agent.WithListeners(l))
//
// Tool calls executed locally are reported as they start and finish. Calls
// the run leaves to the caller (client tools and calls awaiting approval) and
// provider-executed calls are reported when their step finishes, followed by
// a CUSTOM event per approval request.
//
// Listener is safe for concurrent use.
type Listener struct {
	threadID  string
	runID     string
	emit      func(events.Event)
	snapshots bool

	mu      sync.Mutex
	started map[string]bool
}

// NewListener creates a Listener for a single run. Empty IDs are generated.
func NewListener(threadID, runID string, emit func(events.Event), opts ...Option) *Listener {
	if threadID == "" {
		threadID = events.GenerateThreadID()
	}
	if runID == "" {
		runID = events.GenerateRunID()
	}
	l := &Listener{
		threadID: threadID,
		runID:    runID,
		emit:     emit,
		started:  map[string]bool{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ThreadID returns the thread ID for this listener.
func (l *Listener) ThreadID() string {
	return l.threadID
}

// RunID returns the run ID for this listener.
func (l *Listener) RunID() string {
	return l.runID
}

// RunError emits a RUN_ERROR event. Use it for failures outside the run,
// such as invalid input.
func (l *Listener) RunError(err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	l.send(events.NewRunErrorEvent(msg))
}

func (l *Listener) send(evs ...events.Event) {
	for _, ev := range evs {
		if ev != nil {
			l.emit(ev)
		}
	}
}

func stepName(n int) string {
	return "step-" + strconv.Itoa(n+1)
}

// OnRunStart emits RUN_STARTED.
func (l *Listener) OnRunStart(_ context.Context, _ *telemetry.RunStartEvent) error {
	l.send(events.NewRunStartedEvent(l.threadID, l.runID))
	return nil
}

// OnStepStart emits STEP_STARTED.
func (l *Listener) OnStepStart(_ context.Context, e *telemetry.StepStartEvent) error {
	l.send(events.NewStepStartedEvent(stepName(e.Step)))
	return nil
}

// OnToolCallStart emits TOOL_CALL_START, TOOL_CALL_ARGS and TOOL_CALL_END.
func (l *Listener) OnToolCallStart(_ context.Context, e *telemetry.ToolCallStartEvent) error {
	l.mu.Lock()
	l.started[e.Call.ID] = true
	l.mu.Unlock()
	l.send(toolCallEvents(e.Call)...)
	return nil
}

// OnToolCallFinish emits TOOL_CALL_RESULT with the output or error text.
func (l *Listener) OnToolCallFinish(_ context.Context, e *telemetry.ToolCallFinishEvent) error {
	var content string
	if e.Err != nil {
		content = ai.NewToolError(e.Call, e.Err).Error()
	} else {
		content = outputText(e.Output)
	}
	l.send(events.NewToolCallResultEvent(events.GenerateMessageID(), e.Call.ID, content))
	return nil
}

// OnStepFinish emits the step's text as a text message, reports tool calls
// not yet announced, and closes the step.
func (l *Listener) OnStepFinish(_ context.Context, e *telemetry.StepFinishEvent) error {
	step := e.Step
	if text := step.Text(); text != "" {
		id := step.Response.ID
		if id == "" {
			id = events.GenerateMessageID()
		}
		l.send(
			events.NewTextMessageStartEvent(id, events.WithRole(RoleAssistant)),
			events.NewTextMessageContentEvent(id, text),
			events.NewTextMessageEndEvent(id),
		)
	}

	for _, p := range step.Content {
		switch p.Type {
		case ai.PartToolCall:
			if p.ToolCall == nil || l.announced(p.ToolCall.ID) {
				continue
			}
			l.send(toolCallEvents(*p.ToolCall)...)
		case ai.PartToolResult:
			if r := p.ToolResult; r != nil && r.ProviderExecuted {
				l.send(events.NewToolCallResultEvent(events.GenerateMessageID(), r.ToolCallID, outputText(r.Output)))
			}
		case ai.PartToolError:
			if te := p.ToolError; te != nil && te.ProviderExecuted {
				l.send(events.NewToolCallResultEvent(events.GenerateMessageID(), te.ToolCallID, te.Error()))
			}
		case ai.PartApprovalRequest:
			if p.ApprovalRequest != nil {
				l.send(events.NewCustomEvent(ApprovalEventName, events.WithValue(*p.ApprovalRequest)))
			}
		}
	}

	l.send(events.NewStepFinishedEvent(stepName(step.Number)))
	return nil
}

// OnRunFinish emits RUN_FINISHED, or RUN_ERROR when the run failed.
func (l *Listener) OnRunFinish(_ context.Context, e *telemetry.RunFinishEvent) error {
	if e.Err != nil {
		l.RunError(e.Err)
		return nil
	}
	if l.snapshots && e.Context != nil {
		l.send(events.NewStateSnapshotEvent(e.Context))
	}
	l.send(events.NewRunFinishedEvent(l.threadID, l.runID))
	return nil
}

func (l *Listener) announced(callID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.started[callID] {
		return true
	}
	l.started[callID] = true
	return false
}

func toolCallEvents(call ai.ToolCall) []events.Event {
	args := call.Arguments
	if args == "" {
		args = "{}"
	}
	return []events.Event{
		events.NewToolCallStartEvent(call.ID, call.Name),
		events.NewToolCallArgsEvent(call.ID, args),
		events.NewToolCallEndEvent(call.ID),
	}
}

func outputText(v any) string {
	text, err := ai.EncodeOutput(v)
	if err != nil {
		return err.Error()
	}
	return text
}
