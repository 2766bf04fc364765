package stepwise

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput is returned when a required input slice is empty.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidPrompt is returned when a run is given both a prompt and
	// messages, or neither.
	ErrInvalidPrompt = errors.New("invalid prompt: provide either a prompt or messages")

	// ErrNoOutputSpecified is returned when structured output is requested
	// from a run that was not configured with one.
	ErrNoOutputSpecified = errors.New("no output specified")

	// ErrNoOutputGenerated is returned when the final step produced nothing
	// that can be parsed as output.
	ErrNoOutputGenerated = errors.New("no output generated")

	// ErrCancelled matches every cancellation-kind failure via errors.Is.
	ErrCancelled = errors.New("cancelled")

	// ErrTotalTimeout is the cancellation cause when the run budget expires.
	ErrTotalTimeout = errors.New("total timeout exceeded")

	// ErrStepTimeout is the cancellation cause when a step budget expires.
	ErrStepTimeout = errors.New("step timeout exceeded")
)

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorTransient indicates the error is temporary and the operation can be retried.
	// Examples: rate limits, temporary network issues, server overload.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the error is not recoverable through retry.
	// Examples: invalid API key, insufficient permissions, model not found.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput indicates the user provided invalid input that must be corrected.
	// Examples: malformed request, invalid parameters, content policy violation.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is an error that provides information about how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool           // convenience: returns true if Category == ErrorTransient
	StatusCode() int           // HTTP status code if applicable, 0 otherwise
	RetryAfter() time.Duration // suggested retry delay from server, 0 if not available
}

// Error is a categorized error with metadata for error handling decisions.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int           // HTTP status code, 0 if not applicable
	RetryDelay time.Duration // from Retry-After header, 0 if not available
	Cause      error         // underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.Cat
}

// Retryable returns true if the error is transient and can be retried.
func (e *Error) Retryable() bool {
	return e.Cat == ErrorTransient
}

// StatusCode returns the HTTP status code, or 0 if not applicable.
func (e *Error) StatusCode() int {
	return e.Code
}

// RetryAfter returns the suggested retry delay, or 0 if not available.
func (e *Error) RetryAfter() time.Duration {
	return e.RetryDelay
}

// NewTransientError creates a transient error that can be retried.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorTransient,
		Code:  statusCode,
		Cause: cause,
	}
}

// NewTransientErrorWithRetry creates a transient error with a suggested retry delay.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	return &Error{
		Msg:        msg,
		Cat:        ErrorTransient,
		Code:       statusCode,
		RetryDelay: retryAfter,
		Cause:      cause,
	}
}

// NewPermanentError creates a permanent error that should not be retried.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorPermanent,
		Code:  statusCode,
		Cause: cause,
	}
}

// NewUserInputError creates an error indicating invalid user input.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorUserInput,
		Code:  statusCode,
		Cause: cause,
	}
}

// IsTransient returns true if the error is categorized as transient.
// It checks if the error or any wrapped error implements CategorizedError.
func IsTransient(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorTransient
	}
	return false
}

// IsPermanent returns true if the error is categorized as permanent.
// It checks if the error or any wrapped error implements CategorizedError.
func IsPermanent(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorPermanent
	}
	return false
}

// IsUserInput returns true if the error is categorized as user input error.
// It checks if the error or any wrapped error implements CategorizedError.
func IsUserInput(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorUserInput
	}
	return false
}

// StatusCodeOf returns the HTTP status code from a categorized error, or 0.
func StatusCodeOf(err error) int {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the retry delay from a categorized error, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// CancelError reports that a run was aborted by its context or a timeout.
// Cause is the context cause: context.Canceled, context.DeadlineExceeded,
// ErrTotalTimeout, ErrStepTimeout or a caller-supplied cause.
type CancelError struct {
	Cause error
}

// Error returns a message naming the cancellation cause.
func (e *CancelError) Error() string {
	if e.Cause == nil {
		return "run cancelled"
	}
	return fmt.Sprintf("run cancelled: %v", e.Cause)
}

// Unwrap returns the cancellation cause.
func (e *CancelError) Unwrap() error {
	return e.Cause
}

// Is reports true for ErrCancelled.
func (e *CancelError) Is(target error) bool {
	return target == ErrCancelled
}

// IsCancellation reports whether err is a cancellation-kind failure.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// NoSuchToolError is returned when the model calls a tool that is not available.
type NoSuchToolError struct {
	ToolName       string
	AvailableTools []string
}

// Error returns a message naming the tool and the available alternatives.
func (e *NoSuchToolError) Error() string {
	if len(e.AvailableTools) == 0 {
		return fmt.Sprintf("model tried to call unavailable tool %q: no tools are available", e.ToolName)
	}
	return fmt.Sprintf("model tried to call unavailable tool %q: available tools: %v", e.ToolName, e.AvailableTools)
}

// InvalidToolInputError is returned when a tool call's arguments fail to
// parse or validate.
type InvalidToolInputError struct {
	ToolName  string
	ToolInput string
	Err       error
}

// Error returns a message including the validation failure.
func (e *InvalidToolInputError) Error() string {
	return fmt.Sprintf("invalid input for tool %q: %v", e.ToolName, e.Err)
}

// Unwrap returns the underlying validation error.
func (e *InvalidToolInputError) Unwrap() error {
	return e.Err
}

// InvalidToolApprovalError is returned when an approval response references
// an approval ID that no prior request carries.
type InvalidToolApprovalError struct {
	ApprovalID string
}

// Error returns a message naming the unknown approval ID.
func (e *InvalidToolApprovalError) Error() string {
	return fmt.Sprintf("tool approval response references unknown approval %q", e.ApprovalID)
}

// ToolCallNotFoundError is returned when an approval request points at a
// tool call that is missing from the conversation.
type ToolCallNotFoundError struct {
	ToolCallID string
	ApprovalID string
}

// Error returns a message naming the missing call.
func (e *ToolCallNotFoundError) Error() string {
	return fmt.Sprintf("tool call %q for approval %q not found", e.ToolCallID, e.ApprovalID)
}

// StepError wraps a model failure with the step it occurred in.
type StepError struct {
	Step int
	Err  error
}

// Error returns a message including the step number.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

// Unwrap returns the model error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// ErrorFromStatus categorizes a provider failure by its HTTP status code:
// 429 and 5xx are transient, 400/404/422 are user input, everything else is
// permanent. A positive retryAfter is kept for transient errors.
func ErrorFromStatus(msg string, code int, retryAfter time.Duration, cause error) *Error {
	switch {
	case code == 429 || (code >= 500 && code < 600):
		return NewTransientErrorWithRetry(msg, code, retryAfter, cause)
	case code == 400 || code == 404 || code == 413 || code == 422:
		return NewUserInputError(msg, code, cause)
	default:
		return NewPermanentError(msg, code, cause)
	}
}
