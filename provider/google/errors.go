package google

import (
	"errors"

	"google.golang.org/genai"

	ai "github.com/spetersoncode/stepwise"
)

// wrapError categorizes GenAI API errors by status code. genai.APIError does
// not expose headers, so no Retry-After is available.
func wrapError(err error, provider ai.Provider) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) {
			return err
		}
		apiErr = *ptr
	}
	return ai.ErrorFromStatus(provider.String(), apiErr.Code, 0, err)
}
