package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

// TestLogger_IncludesCallFields verifies call fields are present in log output.
func TestLogger_IncludesCallFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	meta := CallMeta{
		Method:  "GET",
		Route:   "/helix/streams",
		Channel: "chan-42",
	}

	callLogger := logger.WithCall(meta)
	callLogger.Info(context.Background(), "test message")

	output := buf.String()

	var logEntry map[string]any
	if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, output)
	}

	if v, ok := logEntry["call.method"].(string); !ok || v != "GET" {
		t.Errorf("expected call.method='GET', got %v", logEntry["call.method"])
	}
	if v, ok := logEntry["call.route"].(string); !ok || v != "/helix/streams" {
		t.Errorf("expected call.route='/helix/streams', got %v", logEntry["call.route"])
	}
	if v, ok := logEntry["call.channel"].(string); !ok || v != "chan-42" {
		t.Errorf("expected call.channel='chan-42', got %v", logEntry["call.channel"])
	}
}

// TestLogger_IncludesDuration verifies duration_ms field is present.
func TestLogger_IncludesDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	callLogger := logger.WithCall(CallMeta{Method: "GET", Route: "/helix/users"})
	callLogger.Info(context.Background(), "test message",
		Field{Key: "duration_ms", Value: 50.5},
	)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["duration_ms"].(float64); !ok || v != 50.5 {
		t.Errorf("expected duration_ms=50.5, got %v", logEntry["duration_ms"])
	}
}

// TestLogger_ErrorLevel verifies error log level and error field.
func TestLogger_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Error(context.Background(), "upstream call failed",
		Field{Key: "error", Value: "connection timeout"},
	)

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["level"].(string); !ok || v != "error" {
		t.Errorf("expected level='error', got %v", logEntry["level"])
	}
	if v, ok := logEntry["error"].(string); !ok || v != "connection timeout" {
		t.Errorf("expected error='connection timeout', got %v", logEntry["error"])
	}
}

// TestLogger_CredentialsRedacted verifies token material never reaches output.
func TestLogger_CredentialsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	for _, key := range []string{"access_token", "refresh_token", "client_secret", "authorization", "token"} {
		buf.Reset()
		logger.Info(context.Background(), "token refreshed",
			Field{Key: key, Value: "super-secret-value"},
		)

		output := buf.String()
		if strings.Contains(output, "super-secret-value") {
			t.Errorf("field %q leaked into output: %s", key, output)
		}
		if !strings.Contains(output, "[REDACTED]") {
			t.Errorf("field %q not marked redacted: %s", key, output)
		}
	}
}

// TestLogger_LevelFiltering verifies log level filtering.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Info(context.Background(), "info message")
	if strings.Contains(buf.String(), "info message") {
		t.Error("info message should be filtered when level is warn")
	}

	logger.Warn(context.Background(), "warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Error("warn message should pass through when level is warn")
	}
}

// TestLogger_DebugLevel verifies debug level passes at debug.
func TestLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf)

	logger.Debug(context.Background(), "debug message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}

	if v, ok := logEntry["level"].(string); !ok || v != "debug" {
		t.Errorf("expected level='debug', got %v", logEntry["level"])
	}
}

// TestLogger_WithCallDoesNotMutateParent verifies scoping is copy-on-write.
func TestLogger_WithCallDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	_ = logger.WithCall(CallMeta{Method: "GET", Route: "/helix/streams"})
	logger.Info(context.Background(), "parent message")

	var logEntry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}
	if _, ok := logEntry["call.route"]; ok {
		t.Error("parent logger picked up call fields from a derived logger")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
