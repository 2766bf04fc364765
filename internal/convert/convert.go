// Package convert holds the helpers the provider adapters share when
// translating conversations to and from provider wire formats.
package convert

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	ai "github.com/spetersoncode/stepwise"
)

// ToolResultText renders a tool result for the model and reports whether it
// describes a failure or denial.
func ToolResultText(res ai.ToolResult) (string, bool) {
	out := ai.OutputOf(res.Output)
	text, err := ai.EncodeOutput(out)
	if err != nil {
		return err.Error(), true
	}
	return text, out.IsError()
}

// ToolResultValue returns the structured form of a tool result for providers
// that accept JSON objects, wrapping scalars under "result".
func ToolResultValue(res ai.ToolResult) (map[string]any, bool) {
	out := ai.OutputOf(res.Output)
	if out.IsError() {
		return map[string]any{"error": out.String()}, true
	}
	if m, ok := out.Value.(map[string]any); ok && out.Type == ai.OutputJSON {
		return m, false
	}
	if out.Type == ai.OutputJSON {
		// Round-trip structs into a generic object.
		if data, err := json.Marshal(out.Value); err == nil {
			var m map[string]any
			if json.Unmarshal(data, &m) == nil && m != nil {
				return m, false
			}
		}
	}
	text, _ := ai.EncodeOutput(out)
	return map[string]any{"result": text}, false
}

// Arguments decodes a tool call's argument string into an object. Invalid or
// empty arguments yield an empty object.
func Arguments(call ai.ToolCall) map[string]any {
	if m, ok := call.Input.(map[string]any); ok {
		return m
	}
	args := map[string]any{}
	if strings.TrimSpace(call.Arguments) != "" {
		_ = json.Unmarshal([]byte(call.Arguments), &args)
	}
	return args
}

// ArgumentsJSON returns the raw argument string, defaulting to "{}".
func ArgumentsJSON(call ai.ToolCall) string {
	if strings.TrimSpace(call.Arguments) == "" {
		return "{}"
	}
	return call.Arguments
}

// Schema decodes a JSON Schema document. An empty schema yields an empty
// object schema.
func Schema(raw json.RawMessage) map[string]any {
	schema := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &schema)
	}
	if _, ok := schema["type"]; !ok {
		schema["type"] = "object"
	}
	return schema
}

// RetryAfter extracts the Retry-After duration from response headers.
// Returns 0 if the header is not present or cannot be parsed.
func RetryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	header := h.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}

// Assistant splits an assistant message into the parts providers replay:
// text, reasoning, tool calls and provider-executed results. Approval
// requests and local tool outcomes are dropped.
func Assistant(msg ai.Message) []ai.ContentPart {
	var parts []ai.ContentPart
	for _, p := range msg.Contents() {
		switch p.Type {
		case ai.PartText, ai.PartReasoning:
			if p.Text != "" {
				parts = append(parts, p)
			}
		case ai.PartToolCall, ai.PartFile:
			parts = append(parts, p)
		case ai.PartToolResult:
			if p.ToolResult.ProviderExecuted {
				parts = append(parts, p)
			}
		}
	}
	return parts
}

// ToolResults returns the tool results of a tool message in order. Tool
// errors are converted to error outputs and approval responses are skipped.
func ToolResults(msg ai.Message) []ai.ToolResult {
	var results []ai.ToolResult
	for _, p := range msg.Parts {
		switch p.Type {
		case ai.PartToolResult:
			results = append(results, *p.ToolResult)
		case ai.PartToolError:
			e := *p.ToolError
			results = append(results, ai.ToolResult{
				ToolCallID: e.ToolCallID,
				ToolName:   e.ToolName,
				Output:     ai.ErrorOutputOf(e),
			})
		}
	}
	return results
}

// FinishReason maps a provider stop reason through table, defaulting to
// ai.FinishOther for unknown non-empty values.
func FinishReason(raw string, table map[string]ai.FinishReason) ai.FinishReason {
	if raw == "" {
		return ai.FinishUnknown
	}
	if r, ok := table[raw]; ok {
		return r
	}
	return ai.FinishOther
}
