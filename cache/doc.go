// Package cache provides the response cache for the gateway client.
//
// The cache is a TTL-keyed byte store behind a small interface. Two
// implementations are provided: an in-process map for tests and
// single-node deployments, and a Redis adapter for the shared cache
// service that multiple application instances point at.
//
// Keys follow the {namespace}:{resource}:{identifier} convention; batch
// lookups derive a stable key from the sorted identifier list so the same
// set of IDs always hits the same entry:
//
//	key := cache.BatchKey("helix", "streams", []string{"42", "7"})
//	// helix:streams:42,7  (sorted)
//
// TTLs are chosen by the caller per resource class (see Policy); the
// cache itself only enforces expiry. Expired entries are treated as
// misses and cleaned up lazily on read.
package cache
