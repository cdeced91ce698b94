package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestCallMeta_SpanName verifies the method+route span name convention.
func TestCallMeta_SpanName(t *testing.T) {
	tests := []struct {
		name string
		meta CallMeta
		want string
	}{
		{"method and route", CallMeta{Method: "GET", Route: "/helix/streams"}, "GET /helix/streams"},
		{"route only", CallMeta{Route: "/helix/streams"}, "/helix/streams"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.meta.SpanName(); got != tc.want {
				t.Errorf("SpanName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func newTestTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

// TestTracer_SpanAttributes verifies call metadata lands on the span.
func TestTracer_SpanAttributes(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	meta := CallMeta{
		Method:   "GET",
		Route:    "/helix/streams",
		Channel:  "chan-7",
		Resource: "live",
	}

	_, span := tracer.StartSpan(context.Background(), meta)
	tracer.EndSpan(span, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded spans = %d, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "GET /helix/streams" {
		t.Errorf("span name = %q, want GET /helix/streams", got.Name())
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if v := attrs["call.route"].AsString(); v != "/helix/streams" {
		t.Errorf("call.route = %q, want /helix/streams", v)
	}
	if v := attrs["call.channel"].AsString(); v != "chan-7" {
		t.Errorf("call.channel = %q, want chan-7", v)
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status().Code)
	}
}

// TestTracer_EndSpanRecordsError verifies error status and attribute.
func TestTracer_EndSpanRecordsError(t *testing.T) {
	tracer, recorder := newTestTracer(t)

	_, span := tracer.StartSpan(context.Background(), CallMeta{Method: "GET", Route: "/helix/users"})
	tracer.EndSpan(span, errors.New("upstream unavailable"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded spans = %d, want 1", len(spans))
	}

	got := spans[0]
	if got.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status().Code)
	}

	var sawErrorAttr bool
	for _, kv := range got.Attributes() {
		if kv.Key == "call.error" && kv.Value.AsBool() {
			sawErrorAttr = true
		}
	}
	if !sawErrorAttr {
		t.Error("call.error attribute not set to true")
	}
	if len(got.Events()) == 0 {
		t.Error("error not recorded as a span event")
	}
}

// TestNoopTracer verifies the noop tracer is safe to use.
func TestNoopTracer(t *testing.T) {
	tracer := NewNoopTracer()

	ctx, span := tracer.StartSpan(context.Background(), CallMeta{Method: "GET", Route: "/x"})
	if ctx == nil {
		t.Fatal("StartSpan returned nil context")
	}
	tracer.EndSpan(span, errors.New("ignored"))
}
