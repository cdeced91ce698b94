// Package resilience provides the admission-control primitives for the
// outbound gateway client.
//
// The package implements the patterns that sit between a caller and a
// rate-limited, sometimes-flaky upstream API:
//
//   - Rate Limiter: a token bucket that blocks callers until the upstream
//     rate budget allows another request.
//
//   - Keyed Rate Limiter: independent token buckets per key, for upstream
//     limits that apply per resource (e.g. per channel) rather than
//     globally.
//
//   - Circuit Breaker: stops issuing requests to an unhealthy upstream
//     after repeated failures and periodically probes for recovery.
//
//   - Backoff: computes retry delays with exponential growth and jitter.
//
//   - Inflight: caps the number of simultaneous upstream calls.
//
// Each primitive is a standalone struct constructed from a Config with
// zero-value defaults:
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{
//	    Capacity:   800,
//	    RefillRate: 800.0 / 60.0, // requests per second
//	})
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    OpenTimeout:      30 * time.Second,
//	})
//
//	if cb.Allow() {
//	    err := rl.Acquire(ctx)
//	    ...
//	}
//
// All primitives are safe for concurrent use; the gateway shares one
// instance of each across every caller targeting the same upstream.
package resilience
