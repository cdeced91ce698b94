package resilience

import (
	"context"
	"sync"
	"time"
)

// KeyedRateLimiter maintains an independent token bucket per key, for
// upstream limits that apply per resource (e.g. moderation actions per
// channel) rather than to the client as a whole.
type KeyedRateLimiter struct {
	config RateLimiterConfig

	mu       sync.Mutex
	limiters map[string]*keyedEntry
}

type keyedEntry struct {
	limiter      *RateLimiter
	lastAccessed time.Time
}

// NewKeyedRateLimiter creates a keyed rate limiter. Each key's bucket is
// created on first use with the given config.
func NewKeyedRateLimiter(config RateLimiterConfig) *KeyedRateLimiter {
	return &KeyedRateLimiter{
		config:   config,
		limiters: make(map[string]*keyedEntry),
	}
}

// Acquire blocks until the bucket for key has a token or ctx is done.
func (krl *KeyedRateLimiter) Acquire(ctx context.Context, key string) error {
	return krl.get(key).Acquire(ctx)
}

// Allow takes a token from the bucket for key without blocking.
func (krl *KeyedRateLimiter) Allow(key string) bool {
	return krl.get(key).Allow()
}

// Available returns the current token count for key.
func (krl *KeyedRateLimiter) Available(key string) float64 {
	return krl.get(key).Available()
}

// CleanupInactive removes buckets that have not been touched for at least
// maxIdle and returns the number removed. A removed key's bucket is
// recreated full on next use, which is acceptable: an idle key has had at
// least maxIdle of refill anyway.
func (krl *KeyedRateLimiter) CleanupInactive(maxIdle time.Duration) int {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for key, entry := range krl.limiters {
		if entry.lastAccessed.Before(cutoff) {
			delete(krl.limiters, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live buckets.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.limiters)
}

func (krl *KeyedRateLimiter) get(key string) *RateLimiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	entry, ok := krl.limiters[key]
	if !ok {
		entry = &keyedEntry{limiter: NewRateLimiter(krl.config)}
		krl.limiters[key] = entry
	}
	entry.lastAccessed = time.Now()
	return entry.limiter
}
