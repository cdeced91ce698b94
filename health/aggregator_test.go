package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func healthyChecker(message string) Checker {
	return NewCheckerFunc("stub", func(ctx context.Context) Result {
		return Healthy(message)
	})
}

func TestAggregatorCheckAll(t *testing.T) {
	agg := NewAggregator()
	agg.Register("gateway", healthyChecker("circuit closed"))
	agg.Register("store", NewCheckerFunc("store", func(ctx context.Context) Result {
		return Degraded("reconnecting")
	}))

	results := agg.CheckAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("CheckAll() returned %d results, want 2", len(results))
	}
	if results["gateway"].Status != StatusHealthy {
		t.Errorf("gateway status = %v, want healthy", results["gateway"].Status)
	}
	if results["store"].Status != StatusDegraded {
		t.Errorf("store status = %v, want degraded", results["store"].Status)
	}
	if results["gateway"].Timestamp.IsZero() {
		t.Error("result Timestamp is zero")
	}
}

func TestAggregatorCheckAllEmpty(t *testing.T) {
	results := NewAggregator().CheckAll(context.Background())
	if len(results) != 0 {
		t.Errorf("CheckAll() on empty aggregator returned %d results", len(results))
	}
}

func TestAggregatorCheckNotFound(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Check(context.Background(), "missing"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregatorRegisterReplaces(t *testing.T) {
	agg := NewAggregator()
	agg.Register("gateway", healthyChecker("first"))
	agg.Register("gateway", healthyChecker("second"))

	result, err := agg.Check(context.Background(), "gateway")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if result.Message != "second" {
		t.Errorf("Message = %q, want replacement checker's message", result.Message)
	}
}

func TestAggregatorUnregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("gateway", healthyChecker("ok"))
	agg.Unregister("gateway")

	if _, err := agg.Check(context.Background(), "gateway"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("Check() after Unregister error = %v, want ErrCheckerNotFound", err)
	}
}

func TestAggregatorSweepTimeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond})
	agg.Register("stuck", NewCheckerFunc("stuck", func(ctx context.Context) Result {
		time.Sleep(500 * time.Millisecond)
		return Healthy("too late")
	}))

	results := agg.CheckAll(context.Background())
	if results["stuck"].Status != StatusUnhealthy {
		t.Errorf("stuck status = %v, want unhealthy", results["stuck"].Status)
	}
	if !errors.Is(results["stuck"].Error, ErrCheckTimeout) {
		t.Errorf("stuck error = %v, want ErrCheckTimeout", results["stuck"].Error)
	}
}

func TestAggregatorOverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusHealthy},
		{"all healthy", map[string]Result{
			"a": Healthy("ok"), "b": Healthy("ok"),
		}, StatusHealthy},
		{"degraded wins over healthy", map[string]Result{
			"a": Healthy("ok"), "b": Degraded("probing"),
		}, StatusDegraded},
		{"unhealthy wins over degraded", map[string]Result{
			"a": Degraded("probing"), "b": Unhealthy("circuit open", nil),
		}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}
