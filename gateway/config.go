package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/jonwraymond/helixgate/cache"
	"github.com/jonwraymond/helixgate/observe"
	"github.com/jonwraymond/helixgate/resilience"
	"github.com/jonwraymond/helixgate/token"
)

// TokenSource supplies credentials for upstream calls. token.Manager is
// the production implementation.
type TokenSource interface {
	AppToken(ctx context.Context) (*token.Credential, error)
	UserToken(ctx context.Context, userID string) (*token.Credential, error)
	Refresh(ctx context.Context, cred *token.Credential) (*token.Credential, error)
}

// Config configures the gateway client. It is read once at construction;
// later mutation has no effect.
type Config struct {
	// BaseURL is the upstream API root, e.g. "https://api.twitch.tv/helix".
	// Required.
	BaseURL string

	// ClientID is sent as the Client-Id header on every call. Required.
	ClientID string

	// Tokens supplies credentials. Required.
	Tokens TokenSource

	// HTTPClient is the transport. The client does not own it.
	// If nil, a default client with a 30 second timeout is used.
	HTTPClient *http.Client

	// Cache is the shared response cache. Nil disables caching.
	Cache cache.Cache

	// CachePolicy maps resource classes to TTLs. Zero value uses
	// cache.DefaultPolicy.
	CachePolicy cache.Policy

	// Namespace prefixes all cache keys. Default: "helixgate"
	Namespace string

	// RateLimit configures the global token bucket.
	RateLimit resilience.RateLimiterConfig

	// ChannelRateLimit configures the per-channel buckets used for
	// requests carrying a ChannelID. Default capacity: 100 per minute.
	ChannelRateLimit resilience.RateLimiterConfig

	// Breaker configures the circuit breaker.
	Breaker resilience.CircuitBreakerConfig

	// Backoff configures the retry delay schedule.
	Backoff resilience.BackoffConfig

	// MaxAttempts bounds the total number of transport attempts per
	// call, shared across 429, 5xx, and 401 retries. Default: 3
	MaxAttempts int

	// MaxInFlight bounds concurrent upstream calls. Default: 64
	MaxInFlight int

	// Logger receives structured events. Nil means no logging.
	Logger observe.Logger

	// Metrics receives call metrics. Nil means no metrics.
	Metrics observe.Metrics

	// Tracer receives call spans. Nil means no tracing.
	Tracer observe.Tracer
}

func (c Config) withDefaults() Config {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.Namespace == "" {
		c.Namespace = "helixgate"
	}
	if c.ChannelRateLimit.Capacity <= 0 {
		c.ChannelRateLimit.Capacity = 100
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Logger == nil {
		c.Logger = observe.NewNoopLogger()
	}
	if c.Metrics == nil {
		c.Metrics = observe.NewNoopMetrics()
	}
	if c.Tracer == nil {
		c.Tracer = observe.NewNoopTracer()
	}

	zero := cache.Policy{}
	if c.CachePolicy == zero {
		c.CachePolicy = cache.DefaultPolicy()
	}
	return c
}
