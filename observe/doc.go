// Package observe provides observability primitives for upstream calls.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. The gateway wires the observer into its request
// executor; nothing here knows about rate limits or circuit breakers.
package observe
