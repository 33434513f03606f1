package codevf

import (
	"context"
	"errors"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

// newTransport builds the default *http.Client. Only 502, 503 and 504 are
// retried, with exponential backoff; every other outcome, including dial
// failures, is returned to the caller on the first attempt.
func newTransport(cfg *clientConfig) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.maxRetries
	rc.RetryWaitMin = cfg.retryWaitMin
	rc.RetryWaitMax = cfg.retryWaitMax
	rc.Backoff = retryablehttp.DefaultBackoff
	rc.CheckRetry = retryTransientStatus
	rc.ErrorHandler = lastResponse
	rc.Logger = cfg.logger
	rc.HTTPClient.Timeout = cfg.timeout

	return rc.StandardClient()
}

// retryTransientStatus is the retry policy handed to go-retryablehttp.
func retryTransientStatus(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return false, err
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	default:
		return false, nil
	}
}

// lastResponse hands the final response back once retries are exhausted so
// its status and body reach the error mapper. net/http drops a response that
// is returned together with an error.
func lastResponse(resp *http.Response, err error, _ int) (*http.Response, error) {
	if resp == nil {
		return nil, err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}
