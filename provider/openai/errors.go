package openai

import (
	"errors"
	"time"

	sdk "github.com/openai/openai-go"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

// wrapError converts SDK API errors into categorized errors. Network failures
// pass through for the retry heuristics.
func wrapError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	var retryAfter time.Duration
	if apiErr.Response != nil {
		retryAfter = convert.RetryAfter(apiErr.Response.Header)
	}
	return ai.ErrorFromStatus("openai", apiErr.StatusCode, retryAfter, err)
}
