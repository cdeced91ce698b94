package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors form the caller-facing error surface. Callers match
// with errors.Is and map to user-facing behavior; they never need to
// know upstream status codes.
var (
	// ErrCircuitOpen means the upstream is presumed unhealthy and the
	// call was rejected without a network attempt.
	ErrCircuitOpen = errors.New("gateway: circuit open")

	// ErrRateLimited means the upstream kept responding 429 after the
	// retry budget was exhausted.
	ErrRateLimited = errors.New("gateway: rate limited by upstream")

	// ErrAuthFailed means the credential was rejected even after one
	// refresh attempt, or could not be obtained at all.
	ErrAuthFailed = errors.New("gateway: authentication failed")

	// ErrNotFound is the non-retryable passthrough for upstream 404s.
	ErrNotFound = errors.New("gateway: not found")

	// ErrBadRequest is the non-retryable passthrough for other client
	// errors (400, 403, ...). These are never retried and never touch
	// the breaker.
	ErrBadRequest = errors.New("gateway: bad request")

	// ErrUpstreamUnavailable means retries on 5xx or transport errors
	// were exhausted.
	ErrUpstreamUnavailable = errors.New("gateway: upstream unavailable")

	// ErrWaitCancelled means the caller's context expired while waiting
	// for a rate-limit token, an in-flight slot, or a backoff sleep.
	ErrWaitCancelled = errors.New("gateway: wait cancelled")
)

// StatusError carries the upstream status code and a body snippet for
// passthrough cases. It is always wrapped in one of the sentinels.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream status %d", e.Code)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Body)
}

// statusErrorSnippet bounds how much upstream body ends up in error text.
const statusErrorSnippet = 256

func newStatusError(code int, body []byte) *StatusError {
	snippet := string(body)
	if len(snippet) > statusErrorSnippet {
		snippet = snippet[:statusErrorSnippet]
	}
	return &StatusError{Code: code, Body: snippet}
}
