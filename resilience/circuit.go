package resilience

import (
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means requests flow normally.
	StateClosed State = iota
	// StateOpen means requests are rejected without reaching the upstream.
	StateOpen
	// StateHalfOpen means a single trial request is probing for recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit. Default: 5
	FailureThreshold int

	// OpenTimeout is how long the circuit stays open before admitting a
	// trial request. Default: 30 seconds
	OpenTimeout time.Duration

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)
}

// CircuitBreaker gates calls to the upstream. Callers check Allow before
// issuing a request and report the outcome with RecordSuccess or
// RecordFailure. Only outcomes that indicate upstream health should be
// recorded; client errors and rate-limit responses are not failures.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	lastFail time.Time
	probing  bool
}

// NewCircuitBreaker creates a new circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.OpenTimeout <= 0 {
		config.OpenTimeout = 30 * time.Second
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Allow reports whether a request may proceed. In the open state it
// returns false until OpenTimeout has elapsed, then transitions to
// half-open and admits exactly one trial request; further requests are
// rejected until the trial's outcome is recorded or the trial is
// released with CancelProbe.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.currentStateLocked() {
	case StateClosed:
		return true
	case StateHalfOpen:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	default:
		return false
	}
}

// RecordSuccess reports a healthy upstream response. It resets the
// failure counter and, if a trial was in flight, closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.failures = 0
		cb.probing = false
		cb.setStateLocked(StateClosed)
	}
}

// RecordFailure reports an unhealthy upstream response. At the failure
// threshold the circuit opens; a failed half-open trial reopens it with a
// fresh timeout window.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFail = time.Now()

	switch cb.state {
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.config.FailureThreshold {
			cb.openedAt = time.Now()
			cb.setStateLocked(StateOpen)
		}
	case StateHalfOpen:
		cb.probing = false
		cb.openedAt = time.Now()
		cb.setStateLocked(StateOpen)
	}
}

// CancelProbe releases a half-open trial whose outcome will never be
// recorded, so a later caller can probe instead. Without it a trial
// that ends in a non-health outcome (client error, cancelled wait)
// would hold the probe slot forever and wedge the breaker half-open.
// A no-op in any other state.
func (cb *CircuitBreaker) CancelProbe() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.probing = false
	}
}

// State returns the current circuit state, accounting for open-timeout
// expiry.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentStateLocked()
}

// Reset forces the breaker back to closed with a zero failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.probing = false
	cb.setStateLocked(StateClosed)
}

// Metrics returns a snapshot of the breaker's counters.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:       cb.currentStateLocked(),
		Failures:    cb.failures,
		LastFailure: cb.lastFail,
		OpenedAt:    cb.openedAt,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State       State
	Failures    int
	LastFailure time.Time
	OpenedAt    time.Time
}

func (cb *CircuitBreaker) currentStateLocked() State {
	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.OpenTimeout {
		cb.probing = false
		cb.setStateLocked(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) setStateLocked(state State) {
	if cb.state == state {
		return
	}
	from := cb.state
	cb.state = state
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, state)
	}
}
