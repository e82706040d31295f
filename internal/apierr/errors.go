// Package apierr provides shared error sentinels, classification, and retry
// infrastructure for the external AI service clients (speech-to-text,
// translation, speech synthesis, transcript cleanup). Provider-specific error
// types are mapped onto these sentinels at the adapter boundary.
//
// Providers wrap with fmt.Errorf("%s: %w", msg, sentinel). Callers check with
// errors.Is(err, apierr.ErrRateLimit) etc., which keeps retry policy and exit
// code mapping free of string matching.
package apierr

import "errors"

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary, retryable).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue, not retryable).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")

	// ErrMalformed indicates the service returned a response that could not be
	// parsed (truncated JSON, broken numbering). Transient-looking, so eligible
	// for a limited retry.
	ErrMalformed = errors.New("malformed service response")

	// ErrContract indicates the service violated its content contract: wrong
	// segment count, changed ids, reordered output. Never retried - the service
	// dropped or invented content, and retrying would mask data loss.
	ErrContract = errors.New("service contract violation")
)
