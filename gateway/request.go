package gateway

import (
	"net/http"
	"net/url"

	"github.com/jonwraymond/helixgate/cache"
	"github.com/jonwraymond/helixgate/observe"
)

// Request describes one upstream call. It is created by the caller,
// treated as immutable by the client, and discarded after the call.
type Request struct {
	// Method is the HTTP method.
	Method string

	// Path is the endpoint path, e.g. "/streams".
	Path string

	// Params are the query parameters.
	Params url.Values

	// Idempotent marks the request as safe to serve from cache and to
	// write through to it.
	Idempotent bool

	// RequiresUserAuth selects a user-delegated credential instead of
	// the app credential. UserID must be set when true.
	RequiresUserAuth bool

	// UserID is the acting user for user-auth requests.
	UserID string

	// ChannelID scopes the request to a channel for per-channel rate
	// limiting. Empty means only the global bucket applies.
	ChannelID string

	// Resource is the freshness class used to pick the cache TTL.
	Resource cache.Class

	// CacheResource is the resource-type segment of the cache key,
	// e.g. "streams". Empty disables caching regardless of Idempotent.
	CacheResource string

	// CacheIDs are the identifiers the request looks up. For batch
	// lookups they are sorted and joined into a stable key.
	CacheIDs []string
}

// cacheKey returns the cache key for the request and whether the
// request is cacheable at all.
func (r *Request) cacheKey(namespace string) (string, bool) {
	if !r.Idempotent || r.CacheResource == "" {
		return "", false
	}

	if len(r.CacheIDs) > 0 {
		return cache.BatchKey(namespace, r.CacheResource, r.CacheIDs), true
	}

	// No explicit IDs: key on the canonical query encoding, which
	// url.Values sorts by parameter name.
	id := r.Params.Encode()
	if id == "" {
		id = r.Path
	}
	return cache.Key(namespace, r.CacheResource, id), true
}

func (r *Request) callMeta() observe.CallMeta {
	return observe.CallMeta{
		Method:   r.Method,
		Route:    r.Path,
		Channel:  r.ChannelID,
		UserID:   r.UserID,
		Resource: r.Resource.String(),
	}
}

// Response is the outcome of a successful upstream call.
type Response struct {
	// StatusCode is the upstream HTTP status.
	StatusCode int

	// Header holds the upstream response headers. Nil for cache hits.
	Header http.Header

	// Body is the full response payload.
	Body []byte

	// FromCache reports whether the response was served from cache
	// without touching the network.
	FromCache bool
}
