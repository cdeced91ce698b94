package resilience

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig configures the retry delay schedule.
type BackoffConfig struct {
	// BaseDelay is the delay before the first retry.
	// Default: 1 second
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30 seconds
	MaxDelay time.Duration

	// Multiplier is the growth factor between attempts.
	// Default: 2.0
	Multiplier float64

	// Jitter randomizes delays to avoid synchronized retries.
	// The jittered delay lies in [delay/2, delay).
	Jitter bool
}

// Backoff computes retry delays. It holds no mutable state and is safe
// for concurrent use.
type Backoff struct {
	config BackoffConfig
}

// NewBackoff creates a backoff schedule.
func NewBackoff(config BackoffConfig) *Backoff {
	// Apply defaults
	if config.BaseDelay <= 0 {
		config.BaseDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}

	return &Backoff{config: config}
}

// Delay returns the delay before retry number attempt (1-based): base,
// base×multiplier, base×multiplier², ... clamped to MaxDelay.
func (b *Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	multiplier := math.Pow(b.config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(b.config.BaseDelay) * multiplier)

	if delay > b.config.MaxDelay || delay <= 0 {
		delay = b.config.MaxDelay
	}

	if b.config.Jitter {
		half := delay / 2
		if half > 0 {
			// #nosec G404 -- jitter is non-cryptographic timing variance.
			delay = half + time.Duration(rand.Int63n(int64(half)))
		}
	}

	return delay
}

// Sleep waits for d or until ctx is done, whichever comes first.
func (b *Backoff) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config returns the backoff configuration.
func (b *Backoff) Config() BackoffConfig {
	return b.config
}
