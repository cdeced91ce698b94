package resilience

import (
	"context"
	"sync"
)

// InflightConfig configures the in-flight call cap.
type InflightConfig struct {
	// MaxInFlight is the maximum number of simultaneous upstream calls.
	// Default: 64
	MaxInFlight int
}

// Inflight bounds the number of upstream calls in flight at once. Unlike
// the rate limiter it measures concurrency, not rate: slow responses pile
// up in-flight calls even at a modest request rate.
type Inflight struct {
	sem chan struct{}

	mu        sync.Mutex
	active    int
	maxActive int
}

// NewInflight creates a new in-flight cap.
func NewInflight(config InflightConfig) *Inflight {
	// Apply defaults
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = 64
	}

	return &Inflight{
		sem: make(chan struct{}, config.MaxInFlight),
	}
}

// Acquire blocks until a slot is free or ctx is done. Every successful
// Acquire must be paired with Release.
func (f *Inflight) Acquire(ctx context.Context) error {
	select {
	case f.sem <- struct{}{}:
	default:
		// Slow path: wait for a slot or cancellation.
		select {
		case f.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	f.mu.Unlock()
	return nil
}

// Release frees a slot.
func (f *Inflight) Release() {
	f.mu.Lock()
	f.active--
	f.mu.Unlock()
	<-f.sem
}

// Active returns the number of calls currently in flight.
func (f *Inflight) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

// MaxActive returns the high-water mark of concurrent calls.
func (f *Inflight) MaxActive() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxActive
}
