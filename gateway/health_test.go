package gateway

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jonwraymond/helixgate/health"
	"github.com/jonwraymond/helixgate/resilience"
)

func TestHealthFollowsBreakerState(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}), func(cfg *Config) {
		cfg.Breaker = resilience.CircuitBreakerConfig{FailureThreshold: 3, OpenTimeout: 30 * time.Millisecond}
		cfg.MaxAttempts = 3
	})

	if got := client.Health().Status; got != health.StatusHealthy {
		t.Errorf("initial Health().Status = %v, want healthy", got)
	}

	// Three 5xx failures open the breaker.
	if _, err := client.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/streams"}); err == nil {
		t.Fatal("Execute() error = nil, want upstream failure")
	}

	result := client.Health()
	if result.Status != health.StatusUnhealthy {
		t.Errorf("Health().Status = %v, want unhealthy", result.Status)
	}
	if result.Details["breaker.state"] != "open" {
		t.Errorf("breaker.state detail = %v, want open", result.Details["breaker.state"])
	}

	// After the open window the breaker probes and health degrades.
	time.Sleep(50 * time.Millisecond)
	if got := client.Health().Status; got != health.StatusDegraded {
		t.Errorf("Health().Status after open window = %v, want degraded", got)
	}
}

func TestCheckerRegistersWithAggregator(t *testing.T) {
	client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	agg := health.NewAggregator()
	agg.Register("gateway", client.Checker())

	results := agg.CheckAll(context.Background())
	if got := agg.OverallStatus(results); got != health.StatusHealthy {
		t.Errorf("OverallStatus = %v, want healthy", got)
	}
	if _, ok := results["gateway"]; !ok {
		t.Error("aggregator results missing gateway entry")
	}
}
