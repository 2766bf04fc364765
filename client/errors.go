package client

import "fmt"

// ErrInvalidModelRef is returned when a model reference is not of the form
// "provider:model".
type ErrInvalidModelRef struct {
	Ref string
}

func (e *ErrInvalidModelRef) Error() string {
	return fmt.Sprintf("invalid model reference %q: expected \"provider:model\"", e.Ref)
}

// ErrUnknownProvider is returned when no factory is registered for a
// provider.
type ErrUnknownProvider struct {
	Provider string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Provider)
}

// ErrMissingAPIKey is returned when a model is requested but no API key
// is configured for that model's provider.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}
