package exporters

import (
	"context"
	"strings"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"stdout", "none", ""} {
		exp, err := NewTracingExporter(ctx, name)
		if err != nil {
			t.Errorf("NewTracingExporter(%q) error = %v", name, err)
			continue
		}
		if exp == nil {
			t.Errorf("NewTracingExporter(%q) = nil", name)
		}
	}

	if _, err := NewTracingExporter(ctx, "zipkin"); err == nil {
		t.Error("NewTracingExporter(zipkin) error = nil, want unknown-exporter error")
	}
}

func TestNewTracingExporterOTLPNeedsEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")

	_, err := NewTracingExporter(context.Background(), "otlp")
	if err == nil || !strings.Contains(err.Error(), "endpoint") {
		t.Errorf("NewTracingExporter(otlp) error = %v, want endpoint-not-configured", err)
	}

	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "http://localhost:4317")
	if _, err := NewTracingExporter(context.Background(), "otlp"); err != nil {
		t.Errorf("NewTracingExporter(otlp) with endpoint error = %v", err)
	}
}

func TestNewTracingExporterJaegerNeedsEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")

	if _, err := NewTracingExporter(context.Background(), "jaeger"); err == nil {
		t.Error("NewTracingExporter(jaeger) error = nil, want endpoint-not-configured")
	}
}

func TestNewMetricsReader(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"stdout", "prometheus", "none", ""} {
		reader, err := NewMetricsReader(ctx, name)
		if err != nil {
			t.Errorf("NewMetricsReader(%q) error = %v", name, err)
			continue
		}
		if reader == nil {
			t.Errorf("NewMetricsReader(%q) = nil", name)
		}
	}

	if _, err := NewMetricsReader(ctx, "statsd"); err == nil {
		t.Error("NewMetricsReader(statsd) error = nil, want unknown-exporter error")
	}
}

func TestNewMetricsReaderOTLPNeedsEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	if _, err := NewMetricsReader(context.Background(), "otlp"); err == nil {
		t.Error("NewMetricsReader(otlp) error = nil, want endpoint-not-configured")
	}
}
