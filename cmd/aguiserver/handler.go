package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/agent"
	"github.com/spetersoncode/stepwise/agui"
	"github.com/spetersoncode/stepwise/tool"
)

// AgentHandler handles AG-UI agent requests over SSE.
// Each request runs an agent over the server tools plus the frontend's
// tools.
type AgentHandler struct {
	model    ai.LanguageModel
	registry *tool.Registry
	config   *Config
}

// NewAgentHandler creates a new handler for the given model and registry.
func NewAgentHandler(model ai.LanguageModel, r *tool.Registry, cfg *Config) *AgentHandler {
	return &AgentHandler{model: model, registry: r, config: cfg}
}

// requestRegistry returns the server tools plus the frontend's tools. A
// fresh registry per request keeps concurrent runs from seeing each other's
// frontend tools.
func (h *AgentHandler) requestRegistry(frontend []tool.Tool, log *slog.Logger) *tool.Registry {
	reg := tool.NewRegistry()
	for _, t := range h.registry.Tools() {
		reg.MustRegister(t)
	}
	for _, t := range frontend {
		if err := reg.Register(t); err != nil {
			log.Warn("skipping frontend tool", "tool", t.Name, "error", err)
		}
	}
	return reg
}

// ServeHTTP handles POST requests to run the agent and stream events via SSE.
func (h *AgentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Only accept POST
	if r.Method != http.MethodPost {
		slog.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse request body
	var input agui.RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		slog.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	// Create request-scoped logger
	log := slog.With(
		"run_id", input.RunID,
		"thread_id", input.ThreadID,
	)

	// Validate and convert input
	prepared, err := input.Prepare()
	if err != nil {
		log.Warn("invalid input", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	registry := h.requestRegistry(prepared.ClientTools(), log)
	if len(prepared.ToolNames) > 0 {
		log.Info("registered frontend tools", "count", len(prepared.ToolNames), "names", prepared.ToolNames)
	}

	log.Info("request started",
		"message_count", len(prepared.Messages),
		"approvals", len(prepared.Approvals),
	)

	// Get flusher for streaming
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var (
		mu         sync.Mutex
		eventCount int
		writeErr   error
	)
	emit := func(ev aguievents.Event) {
		mu.Lock()
		defer mu.Unlock()
		if writeErr != nil {
			return
		}
		eventCount++
		log.Debug("sending SSE event", "event_type", ev.Type(), "event_num", eventCount)
		if err := writeSSE(w, flusher, ev); err != nil {
			log.Error("failed to write SSE event", "error", err, "event_type", ev.Type())
			writeErr = err
		}
	}

	listener := agui.NewListener(prepared.ThreadID, prepared.RunID, emit, agui.WithStateSnapshots())
	opts := []agent.Option{
		agent.WithMaxSteps(h.config.MaxSteps),
		agent.WithTimeout(h.config.Timeout),
		agent.WithListeners(listener),
		agent.WithTelemetry("aguiserver", map[string]any{"thread_id": listener.ThreadID()}),
	}
	if prepared.State != nil {
		opts = append(opts, agent.WithContext(prepared.State))
	}

	a := agent.New(h.model, registry, h.defaults()...)
	result, err := a.Run(r.Context(), prepared.Messages, opts...)

	mu.Lock()
	sent := eventCount
	mu.Unlock()
	if err != nil && sent == 0 {
		// The run failed before it started, so no RUN_ERROR was emitted.
		listener.RunError(err)
	}

	duration := time.Since(start)
	switch {
	case err != nil:
		log.Error("request failed",
			"duration_ms", duration.Milliseconds(),
			"events_sent", sent,
			"error", err,
		)
	default:
		log.Info("request completed",
			"duration_ms", duration.Milliseconds(),
			"events_sent", sent,
			"steps", result.StepCount(),
			"total_tokens", result.TotalUsage.TotalTokens,
		)
	}
}

func (h *AgentHandler) defaults() []agent.Option {
	if h.config.System == "" {
		return nil
	}
	return []agent.Option{agent.WithSystem(h.config.System)}
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev aguievents.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	// Write SSE format: event: TYPE\ndata: {json}\n\n
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), string(data)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
