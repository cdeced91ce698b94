// Package health provides health checking primitives for the gateway's
// internal components.
//
// A Checker is any component that can report its health status: the
// circuit breaker, the response cache backend, the token endpoint. The
// Status type represents the health state: Healthy, Degraded, or
// Unhealthy.
//
// Use Aggregator to combine component checks into one composite view:
//
//	agg := health.NewAggregator()
//	agg.Register("breaker", breakerChecker)
//	agg.Register("cache", cacheChecker)
//
//	results := agg.CheckAll(ctx)
//	overall := agg.OverallStatus(results)
//
// The host service decides how to expose the results; this package does
// no HTTP.
package health
