// Package telemetry observes runs through lifecycle listeners.
//
// A listener is any value implementing a subset of RunStartListener,
// StepStartListener, ToolCallStartListener, ToolCallFinishListener,
// StepFinishListener and RunFinishListener. Listeners registered with
// Register observe every run in the process; per-run listeners are passed to
// the agent. A Notifier delivers events to the global listeners first, then
// the per-run ones, one at a time.
//
// NewOTelListener records OpenTelemetry spans and metrics; NewLogListener
// writes to a slog.Logger.
package telemetry
