package agent

import (
	"context"
	"sync"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/telemetry"
)

// mockModel replays scripted responses and records every call.
type mockModel struct {
	mu        sync.Mutex
	responses []*ai.Response
	errAt     map[int]error
	generate  func(ctx context.Context, step int) (*ai.Response, error)

	calls    int
	messages [][]ai.Message
	options  []*ai.Options
}

func newMockModel(responses ...*ai.Response) *mockModel {
	return &mockModel{responses: responses}
}

func (m *mockModel) Provider() string { return "mock" }
func (m *mockModel) ModelID() string  { return "mock-1" }

func (m *mockModel) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	m.mu.Lock()
	n := m.calls
	m.calls++
	m.messages = append(m.messages, messages)
	m.options = append(m.options, ai.ApplyOptions(opts...))
	m.mu.Unlock()

	if m.generate != nil {
		return m.generate(ctx, n)
	}
	if err, ok := m.errAt[n]; ok {
		return nil, err
	}
	if n < len(m.responses) {
		return m.responses[n], nil
	}
	return textResponse("done", ai.Usage{}), nil
}

func (m *mockModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func textResponse(text string, usage ai.Usage) *ai.Response {
	return &ai.Response{
		Content:      []ai.ContentPart{ai.NewTextPart(text)},
		FinishReason: ai.FinishStop,
		Usage:        usage,
	}
}

func toolCallResponse(usage ai.Usage, calls ...ai.ToolCall) *ai.Response {
	parts := make([]ai.ContentPart, len(calls))
	for i, c := range calls {
		parts[i] = ai.NewToolCallPart(c)
	}
	return &ai.Response{
		Content:      parts,
		FinishReason: ai.FinishToolCalls,
		Usage:        usage,
	}
}

func usage(in, out int) ai.Usage {
	return ai.Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}

func partTypes(parts []ai.ContentPart) []ai.PartType {
	types := make([]ai.PartType, len(parts))
	for i, p := range parts {
		types[i] = p.Type
	}
	return types
}

// isolated keeps tests independent of listeners registered on telemetry.Default.
func isolated() Option {
	return WithRegistry(telemetry.NewRegistry())
}

// eventRecorder records the names of the hooks it receives.
type eventRecorder struct {
	mu     sync.Mutex
	name   string
	events []string
	log    *[]string
}

func (r *eventRecorder) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if r.log != nil {
		*r.log = append(*r.log, r.name+":"+event)
	}
}

func (r *eventRecorder) OnRunStart(ctx context.Context, e *telemetry.RunStartEvent) error {
	r.record("run-start")
	return nil
}

func (r *eventRecorder) OnStepStart(ctx context.Context, e *telemetry.StepStartEvent) error {
	r.record("step-start")
	return nil
}

func (r *eventRecorder) OnToolCallStart(ctx context.Context, e *telemetry.ToolCallStartEvent) error {
	r.record("tool-start")
	return nil
}

func (r *eventRecorder) OnToolCallFinish(ctx context.Context, e *telemetry.ToolCallFinishEvent) error {
	r.record("tool-finish")
	return nil
}

func (r *eventRecorder) OnStepFinish(ctx context.Context, e *telemetry.StepFinishEvent) error {
	r.record("step-finish")
	return nil
}

func (r *eventRecorder) OnRunFinish(ctx context.Context, e *telemetry.RunFinishEvent) error {
	r.record("run-finish")
	return nil
}

func (r *eventRecorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
