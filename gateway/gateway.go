package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/jonwraymond/helixgate/observe"
	"github.com/jonwraymond/helixgate/resilience"
	"github.com/jonwraymond/helixgate/token"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 10 << 20

// Client is the resilient gateway to a single upstream API. One Client
// is shared by all concurrent callers; the limiter, breaker, and token
// state are singletons per upstream.
type Client struct {
	config Config

	limiter  *resilience.RateLimiter
	channels *resilience.KeyedRateLimiter
	breaker  *resilience.CircuitBreaker
	backoff  *resilience.Backoff
	inflight *resilience.Inflight
}

// New creates a gateway client.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if config.ClientID == "" {
		return nil, errors.New("gateway: client ID is required")
	}
	if config.Tokens == nil {
		return nil, errors.New("gateway: token source is required")
	}
	config = config.withDefaults()

	// Breaker transitions are worth a log line even when the caller
	// installed no callback.
	logger := config.Logger
	userCallback := config.Breaker.OnStateChange
	config.Breaker.OnStateChange = func(from, to resilience.State) {
		logger.Warn(context.Background(), "circuit state changed",
			observe.Field{Key: "from", Value: from.String()},
			observe.Field{Key: "to", Value: to.String()},
		)
		if userCallback != nil {
			userCallback(from, to)
		}
	}

	return &Client{
		config:   config,
		limiter:  resilience.NewRateLimiter(config.RateLimit),
		channels: resilience.NewKeyedRateLimiter(config.ChannelRateLimit),
		breaker:  resilience.NewCircuitBreaker(config.Breaker),
		backoff:  resilience.NewBackoff(config.Backoff),
		inflight: resilience.NewInflight(resilience.InflightConfig{MaxInFlight: config.MaxInFlight}),
	}, nil
}

// Execute runs one upstream call through the full resilience pipeline:
// cache, breaker, limiter, credential, transport, classification, retry.
// The caller's context bounds the entire call including all retries.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", ErrBadRequest)
	}

	meta := req.callMeta()
	ctx, span := c.config.Tracer.StartSpan(ctx, meta)
	start := time.Now()

	resp, err := c.execute(ctx, req, meta)

	c.config.Metrics.RecordCall(ctx, meta, time.Since(start), err)
	c.config.Tracer.EndSpan(span, err)
	return resp, err
}

func (c *Client) execute(ctx context.Context, req *Request, meta observe.CallMeta) (*Response, error) {
	logger := c.config.Logger.WithCall(meta)

	key, cacheable := req.cacheKey(c.config.Namespace)
	ttl := c.config.CachePolicy.TTL(req.Resource)
	cacheable = cacheable && c.config.Cache != nil && ttl > 0

	// A cache hit skips breaker, limiter, and network entirely.
	if cacheable {
		if data, ok := c.config.Cache.Get(ctx, key); ok {
			c.config.Metrics.RecordCacheHit(ctx, meta)
			return &Response{StatusCode: http.StatusOK, Body: data, FromCache: true}, nil
		}
		c.config.Metrics.RecordCacheMiss(ctx, meta)
	}

	if !c.breaker.Allow() {
		return nil, ErrCircuitOpen
	}

	// Exits that record no breaker outcome (4xx, 429 exhaustion, auth
	// and cancellation errors) must not leave a half-open trial holding
	// the probe slot.
	outcomeRecorded := false
	defer func() {
		if !outcomeRecorded {
			c.breaker.CancelProbe()
		}
	}()

	if err := c.inflight.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWaitCancelled, err)
	}
	defer c.inflight.Release()

	var lastErr error
	authRetried := false

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWaitCancelled, err)
		}
		if req.ChannelID != "" {
			if err := c.channels.Acquire(ctx, req.ChannelID); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrWaitCancelled, err)
			}
		}

		cred, err := c.credential(ctx, req)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, req, cred)
		if err != nil {
			// Transport failure is an upstream-health signal.
			outcomeRecorded = true
			c.breaker.RecordFailure()
			lastErr = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			if attempt == c.config.MaxAttempts {
				break
			}
			logger.Warn(ctx, "transport error, retrying",
				observe.Field{Key: "error", Value: err.Error()},
				observe.Field{Key: "attempt", Value: attempt},
			)
			if err := c.retrySleep(ctx, meta, c.backoff.Delay(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			outcomeRecorded = true
			c.breaker.RecordSuccess()
			if cacheable {
				// Best effort: a failed cache write only costs freshness.
				_ = c.config.Cache.Set(ctx, key, resp.Body, ttl)
			}
			return resp, nil

		case resp.StatusCode == http.StatusUnauthorized:
			// One refresh-and-retry; a second 401 is terminal. Auth
			// rejections are not upstream-health signals.
			lastErr = fmt.Errorf("%w: %v", ErrAuthFailed, newStatusError(resp.StatusCode, resp.Body))
			if authRetried {
				return nil, lastErr
			}
			authRetried = true
			if _, rerr := c.config.Tokens.Refresh(ctx, cred); rerr != nil {
				return nil, fmt.Errorf("%w: refresh failed: %v", ErrAuthFailed, rerr)
			}
			logger.Info(ctx, "credential refreshed after 401",
				observe.Field{Key: "attempt", Value: attempt},
			)
			c.config.Metrics.RecordRetry(ctx, meta)
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			// Expected load-shedding, never a breaker failure.
			lastErr = fmt.Errorf("%w: %v", ErrRateLimited, newStatusError(resp.StatusCode, resp.Body))
			if attempt == c.config.MaxAttempts {
				break
			}
			delay := retryAfter(resp.Header)
			if delay <= 0 {
				delay = c.backoff.Delay(attempt)
			}
			logger.Warn(ctx, "rate limited by upstream, backing off",
				observe.Field{Key: "delay", Value: delay.String()},
				observe.Field{Key: "attempt", Value: attempt},
			)
			if err := c.retrySleep(ctx, meta, delay); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode >= 500:
			outcomeRecorded = true
			c.breaker.RecordFailure()
			lastErr = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, newStatusError(resp.StatusCode, resp.Body))
			if attempt == c.config.MaxAttempts {
				break
			}
			logger.Warn(ctx, "upstream error, retrying",
				observe.Field{Key: "status", Value: resp.StatusCode},
				observe.Field{Key: "attempt", Value: attempt},
			)
			if err := c.retrySleep(ctx, meta, c.backoff.Delay(attempt)); err != nil {
				return nil, err
			}
			continue

		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %v", ErrNotFound, newStatusError(resp.StatusCode, resp.Body))

		default:
			// Remaining 4xx: client errors, not upstream-health signals.
			return nil, fmt.Errorf("%w: %v", ErrBadRequest, newStatusError(resp.StatusCode, resp.Body))
		}
	}

	return nil, lastErr
}

// credential selects the credential kind for the request.
func (c *Client) credential(ctx context.Context, req *Request) (*token.Credential, error) {
	if req.RequiresUserAuth {
		if req.UserID == "" {
			return nil, fmt.Errorf("%w: user auth required but no user id", ErrBadRequest)
		}
		cred, err := c.config.Tokens.UserToken(ctx, req.UserID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
		}
		return cred, nil
	}

	cred, err := c.config.Tokens.AppToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	return cred, nil
}

// do issues one transport attempt.
func (c *Client) do(ctx context.Context, req *Request, cred *token.Credential) (*Response, error) {
	target := c.config.BaseURL + req.Path
	if len(req.Params) > 0 {
		target += "?" + req.Params.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Client-Id", c.config.ClientID)
	httpReq.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := c.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) retrySleep(ctx context.Context, meta observe.CallMeta, delay time.Duration) error {
	c.config.Metrics.RecordRetry(ctx, meta)
	if err := c.backoff.Sleep(ctx, delay); err != nil {
		return fmt.Errorf("%w: %v", ErrWaitCancelled, err)
	}
	return nil
}

// retryAfter parses an upstream-supplied Retry-After header, either
// delay-seconds or an HTTP date. Zero means no usable hint.
func retryAfter(header http.Header) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return 0
	}

	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}

	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// CleanupChannels sweeps per-channel rate limiter buckets idle for at
// least maxIdle and returns how many were removed. Call it periodically
// from the host service.
func (c *Client) CleanupChannels(maxIdle time.Duration) int {
	return c.channels.CleanupInactive(maxIdle)
}

// BreakerState exposes the current circuit state for introspection.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// AvailableTokens reports how many rate-limit tokens are currently in
// the global bucket.
func (c *Client) AvailableTokens() float64 {
	return c.limiter.Available()
}
