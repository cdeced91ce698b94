// Package gateway is the resilient outbound client for a single
// rate-limited upstream HTTP API.
//
// A Client composes the resilience primitives into one call path:
// cache lookup, circuit-breaker gate, rate-limiter wait, credential
// attachment, transport call, outcome classification, and bounded
// retry with backoff. Callers submit a Request descriptor and receive
// a Response or one of the package's sentinel errors; they never see
// raw upstream status codes unless they ask the wrapped StatusError.
package gateway
