package retry

import (
	"context"
	"time"
)

// EventType identifies the kind of event occurring during retry execution.
type EventType string

const (
	// EventAttemptFailed fires after a failed attempt.
	EventAttemptFailed EventType = "attempt_failed"

	// EventRetrying fires before sleeping between attempts.
	EventRetrying EventType = "retrying"

	// EventExhausted fires when all retry attempts are exhausted.
	EventExhausted EventType = "exhausted"
)

// Event represents an observable occurrence during retry execution.
type Event struct {
	Type EventType

	// Attempt is the current attempt number (1-indexed).
	Attempt     int
	MaxAttempts int

	Err       error
	Delay     time.Duration
	Retryable bool
}

// Do executes fn with retry logic. It respects context cancellation during
// backoff waits and returns the last error if all attempts fail.
func Do[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	return DoWithEvents(ctx, cfg, nil, fn)
}

// DoWithEvents is like Do but reports attempts to onEvent. A nil onEvent is
// allowed.
func DoWithEvents[T any](ctx context.Context, cfg Config, onEvent func(Event), fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	emit := func(e Event) {
		if onEvent != nil {
			e.MaxAttempts = cfg.MaxAttempts
			onEvent(e)
		}
	}

	attempts := max(cfg.MaxAttempts, 1)
	for attempt := range attempts {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		retryable := IsTransient(err) && ctx.Err() == nil
		emit(Event{Type: EventAttemptFailed, Attempt: attempt + 1, Err: err, Retryable: retryable})
		if !retryable {
			return zero, err
		}

		if attempt < attempts-1 {
			delay := effectiveDelay(cfg.Delay(attempt), err)
			emit(Event{Type: EventRetrying, Attempt: attempt + 1, Delay: delay})

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, context.Cause(ctx)
			case <-timer.C:
			}
		}
	}

	emit(Event{Type: EventExhausted, Attempt: attempts, Err: lastErr})
	return zero, lastErr
}
