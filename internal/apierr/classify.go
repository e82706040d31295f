package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Classify maps an OpenAI API error to a sentinel error.
// Non-API errors pass through unchanged, except context deadline expiry
// which becomes ErrTimeout.
func Classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			// Distinguish a temporary rate limit from quota exhaustion (billing
			// issue). Quota exhaustion must not be retried - it requires user action.
			if strings.Contains(apiErr.Message, "quota") ||
				strings.Contains(apiErr.Message, "billing") {
				return fmt.Errorf("%s: %w", apiErr.Message, ErrQuotaExceeded)
			}
			return fmt.Errorf("%s: %w", apiErr.Message, ErrRateLimit)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrAuthFailed)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrTimeout)
		case http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%s: %w", apiErr.Message, ErrBadRequest)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", ErrTimeout)
	}

	return err
}

// IsRetryable reports whether an error is transient and worth retrying.
func IsRetryable(err error) bool {
	// Rate limits and timeouts back off and retry.
	if errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout) {
		return true
	}

	// A malformed response may be a transient service hiccup.
	if errors.Is(err, ErrMalformed) {
		return true
	}

	// Content-shape violations are never retried.
	if errors.Is(err, ErrContract) {
		return false
	}

	// Server errors (5xx) are retryable.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	// Cancellation and auth failures are final.
	return false
}
