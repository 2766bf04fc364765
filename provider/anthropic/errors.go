package anthropic

import (
	"errors"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

// wrapError converts SDK API errors into categorized errors. Other errors
// (network failures) are returned as-is for the retry heuristics.
func wrapError(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	var retryAfter time.Duration
	if apiErr.Response != nil {
		retryAfter = convert.RetryAfter(apiErr.Response.Header)
	}
	return ai.ErrorFromStatus("anthropic", apiErr.StatusCode, retryAfter, err)
}
