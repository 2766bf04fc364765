package client

import (
	"context"
	"time"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/retry"
)

// EventType identifies the kind of event occurring during model calls.
type EventType string

const (
	// EventRequestStart fires before a Generate call begins.
	EventRequestStart EventType = "request_start"

	// EventRequestComplete fires after a Generate call succeeds.
	EventRequestComplete EventType = "request_complete"

	// EventRequestError fires when a Generate call fails after retries.
	EventRequestError EventType = "request_error"

	// EventRetry fires for each retry event (forwarded from the retry package).
	EventRetry EventType = "retry"
)

// Event represents an observable occurrence during model calls.
type Event struct {
	Type     EventType
	Provider string
	Model    string

	// Duration is the elapsed time for completed or failed requests.
	Duration time.Duration

	// Usage is set on EventRequestComplete.
	Usage *ai.Usage

	// Error is set on EventRequestError.
	Error error

	// RetryEvent is set on EventRetry.
	RetryEvent *retry.Event

	Timestamp time.Time
}

// emit sends an event with timestamp to the channel without blocking.
func emit(ch chan<- Event, event Event) {
	if ch == nil {
		return
	}
	event.Timestamp = time.Now()
	select {
	case ch <- event:
	default:
		// Channel full - don't block
	}
}

// observed reports request events for the model it wraps.
type observed struct {
	ai.LanguageModel
	events chan<- Event
}

func (m *observed) Generate(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	base := Event{Provider: m.Provider(), Model: m.ModelID()}
	start := base
	start.Type = EventRequestStart
	emit(m.events, start)

	began := time.Now()
	resp, err := m.LanguageModel.Generate(ctx, messages, opts...)
	done := base
	done.Duration = time.Since(began)
	if err != nil {
		done.Type = EventRequestError
		done.Error = err
	} else {
		done.Type = EventRequestComplete
		usage := resp.Usage
		done.Usage = &usage
	}
	emit(m.events, done)
	return resp, err
}
