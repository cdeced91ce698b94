package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures the token-bucket rate limiter.
type RateLimiterConfig struct {
	// Capacity is the maximum number of tokens the bucket holds.
	// Default: 800 (the upstream's per-minute request budget).
	Capacity int

	// RefillRate is the number of tokens added per second.
	// Default: Capacity/60, i.e. the full bucket refills in one minute.
	RefillRate float64
}

// RateLimiter is a token-bucket rate limiter. The bucket starts full and
// refills continuously with wall-clock time, capped at Capacity.
type RateLimiter struct {
	config RateLimiterConfig

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	// Apply defaults
	if config.Capacity <= 0 {
		config.Capacity = 800
	}
	if config.RefillRate <= 0 {
		config.RefillRate = float64(config.Capacity) / 60.0
	}

	return &RateLimiter{
		config:     config,
		tokens:     float64(config.Capacity),
		lastRefill: time.Now(),
	}
}

// Allow takes a token without blocking. It returns false when the bucket
// is empty.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refillLocked()

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Acquire blocks until a token is available or ctx is done. It returns
// ctx.Err() on cancellation and never fails for any other reason.
func (rl *RateLimiter) Acquire(ctx context.Context) error {
	for {
		rl.mu.Lock()
		rl.refillLocked()

		if rl.tokens >= 1 {
			rl.tokens--
			rl.mu.Unlock()
			return nil
		}

		// Time until one full token has accumulated.
		wait := time.Duration((1 - rl.tokens) / rl.config.RefillRate * float64(time.Second))
		rl.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Re-check; another caller may have taken the token.
		}
	}
}

// Available returns the current token count after refill.
func (rl *RateLimiter) Available() float64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	return rl.tokens
}

// Reset refills the bucket to capacity.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.tokens = float64(rl.config.Capacity)
	rl.lastRefill = time.Now()
}

func (rl *RateLimiter) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	rl.lastRefill = now

	rl.tokens += elapsed.Seconds() * rl.config.RefillRate

	if rl.tokens > float64(rl.config.Capacity) {
		rl.tokens = float64(rl.config.Capacity)
	}
}
