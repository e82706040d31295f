package apierr_test

// Notes:
// - Black-box testing via package apierr_test.
// - The 429 split matters most: rate limits retry, quota exhaustion must not.

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/revoicehq/revoice/internal/apierr"
)

func apiError(status int, message string) error {
	return &openai.APIError{HTTPStatusCode: status, Message: message}
}

// ---------------------------------------------------------------------------
// TestClassify - Provider error to sentinel mapping
// ---------------------------------------------------------------------------

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input error
		want  error
	}{
		{name: "plain 429 is a rate limit", input: apiError(429, "slow down"), want: apierr.ErrRateLimit},
		{name: "429 mentioning quota", input: apiError(429, "you exceeded your current quota"), want: apierr.ErrQuotaExceeded},
		{name: "429 mentioning billing", input: apiError(429, "billing hard limit reached"), want: apierr.ErrQuotaExceeded},
		{name: "401 is auth failure", input: apiError(401, "invalid api key"), want: apierr.ErrAuthFailed},
		{name: "408 is timeout", input: apiError(408, "request timeout"), want: apierr.ErrTimeout},
		{name: "504 is timeout", input: apiError(504, "gateway timeout"), want: apierr.ErrTimeout},
		{name: "400 is bad request", input: apiError(400, "invalid file format"), want: apierr.ErrBadRequest},
		{name: "403 is bad request", input: apiError(403, "forbidden"), want: apierr.ErrBadRequest},
		{name: "404 is bad request", input: apiError(404, "model not found"), want: apierr.ErrBadRequest},
		{name: "deadline expiry is timeout", input: context.DeadlineExceeded, want: apierr.ErrTimeout},
		{name: "wrapped deadline expiry", input: fmt.Errorf("upload: %w", context.DeadlineExceeded), want: apierr.ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := apierr.Classify(tt.input)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	t.Run("unrecognized errors pass through", func(t *testing.T) {
		t.Parallel()

		sentinel := errors.New("disk full")
		if got := apierr.Classify(sentinel); got != sentinel {
			t.Errorf("Classify() = %v, want the original error", got)
		}
	})

	t.Run("500 is not remapped but stays inspectable", func(t *testing.T) {
		t.Parallel()

		in := apiError(500, "internal error")
		got := apierr.Classify(in)
		var apiErr *openai.APIError
		if !errors.As(got, &apiErr) || apiErr.HTTPStatusCode != 500 {
			t.Errorf("Classify(500) = %v, want the API error preserved", got)
		}
	})
}

// ---------------------------------------------------------------------------
// TestIsRetryable - Retry policy
// ---------------------------------------------------------------------------

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input error
		want  bool
	}{
		{name: "rate limit", input: apierr.ErrRateLimit, want: true},
		{name: "timeout", input: apierr.ErrTimeout, want: true},
		{name: "malformed response", input: apierr.ErrMalformed, want: true},
		{name: "wrapped rate limit", input: fmt.Errorf("translate: %w", apierr.ErrRateLimit), want: true},
		{name: "contract violation", input: apierr.ErrContract, want: false},
		{name: "quota exhaustion", input: apierr.ErrQuotaExceeded, want: false},
		{name: "auth failure", input: apierr.ErrAuthFailed, want: false},
		{name: "bad request", input: apierr.ErrBadRequest, want: false},
		{name: "server error 500", input: apiError(500, "internal"), want: true},
		{name: "server error 502", input: apiError(502, "bad gateway"), want: true},
		{name: "server error 503", input: apiError(503, "overloaded"), want: true},
		{name: "cancellation", input: context.Canceled, want: false},
		{name: "unknown error", input: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := apierr.IsRetryable(tt.input); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
