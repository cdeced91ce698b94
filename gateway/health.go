package gateway

import (
	"context"
	"fmt"

	"github.com/jonwraymond/helixgate/health"
	"github.com/jonwraymond/helixgate/resilience"
)

// Health reports the client's view of the upstream from the circuit
// breaker's perspective: closed is healthy, half-open is degraded, open
// is unhealthy.
func (c *Client) Health() health.Result {
	m := c.breaker.Metrics()

	details := map[string]any{
		"breaker.state":    m.State.String(),
		"breaker.failures": m.Failures,
		"limiter.tokens":   c.limiter.Available(),
		"inflight.active":  c.inflight.Active(),
	}
	if !m.LastFailure.IsZero() {
		details["breaker.last_failure"] = m.LastFailure
	}

	switch m.State {
	case resilience.StateClosed:
		return health.Healthy("circuit closed").WithDetails(details)
	case resilience.StateHalfOpen:
		return health.Degraded("circuit half-open, probing upstream").WithDetails(details)
	default:
		return health.Unhealthy(
			fmt.Sprintf("circuit open after %d consecutive failures", m.Failures),
			ErrCircuitOpen,
		).WithDetails(details)
	}
}

// Checker adapts the client into the health framework so the host
// service can register it alongside its other components.
func (c *Client) Checker() health.Checker {
	return health.NewCheckerFunc("gateway", func(ctx context.Context) health.Result {
		return c.Health()
	})
}
