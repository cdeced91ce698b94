package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records the gateway's upstream-call metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records a completed upstream call with duration and
	// error status.
	RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error)

	// RecordRetry records a retry attempt for an upstream call.
	RecordRetry(ctx context.Context, meta CallMeta)

	// RecordCacheHit records a response served from cache.
	RecordCacheHit(ctx context.Context, meta CallMeta)

	// RecordCacheMiss records a cache miss that went upstream.
	RecordCacheMiss(ctx context.Context, meta CallMeta)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	retryCount   metric.Int64Counter
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"gateway.requests",
		metric.WithDescription("Total number of upstream requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"gateway.errors",
		metric.WithDescription("Total number of failed upstream requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"gateway.retries",
		metric.WithDescription("Total number of upstream retry attempts"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"gateway.cache.hits",
		metric.WithDescription("Responses served from cache"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"gateway.cache.misses",
		metric.WithDescription("Cache misses that went upstream"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"gateway.request.duration_ms",
		metric.WithDescription("Upstream request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		retryCount:   retryCount,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		durationHist: durationHist,
	}, nil
}

func callAttributes(meta CallMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("call.method", meta.Method),
		attribute.String("call.route", meta.Route),
	}
	if meta.Resource != "" {
		attrs = append(attrs, attribute.String("call.resource", meta.Resource))
	}
	return metric.WithAttributes(attrs...)
}

// RecordCall records metrics for a completed upstream call.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	opt := callAttributes(meta)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRetry records a retry attempt.
func (m *metricsImpl) RecordRetry(ctx context.Context, meta CallMeta) {
	m.retryCount.Add(ctx, 1, callAttributes(meta))
}

// RecordCacheHit records a response served from cache.
func (m *metricsImpl) RecordCacheHit(ctx context.Context, meta CallMeta) {
	m.cacheHits.Add(ctx, 1, callAttributes(meta))
}

// RecordCacheMiss records a cache miss.
func (m *metricsImpl) RecordCacheMiss(ctx context.Context, meta CallMeta) {
	m.cacheMisses.Add(ctx, 1, callAttributes(meta))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordCall(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordRetry(ctx context.Context, meta CallMeta)     {}
func (m *noopMetrics) RecordCacheHit(ctx context.Context, meta CallMeta)  {}
func (m *noopMetrics) RecordCacheMiss(ctx context.Context, meta CallMeta) {}
