package bedrock

import (
	"errors"
	"net/http"
	"time"

	smithy "github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	ai "github.com/spetersoncode/stepwise"
	"github.com/spetersoncode/stepwise/internal/convert"
)

// throttlingCodes are error codes Bedrock uses for rate limiting, sometimes
// without a 429 status.
var throttlingCodes = map[string]bool{
	"ThrottlingException":       true,
	"TooManyRequestsException":  true,
	"ServiceQuotaExceededError": true,
}

// wrapError categorizes Bedrock errors by HTTP status, treating throttling
// codes as 429. Errors without a response pass through unchanged.
func wrapError(err error) error {
	status := 0
	var retryAfter time.Duration
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		status = respErr.HTTPStatusCode()
		if respErr.Response != nil && respErr.Response.Response != nil {
			retryAfter = convert.RetryAfter(respErr.Response.Header)
		}
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && throttlingCodes[apiErr.ErrorCode()] {
		status = http.StatusTooManyRequests
	}
	if status == 0 {
		return err
	}
	return ai.ErrorFromStatus("bedrock", status, retryAfter, err)
}
