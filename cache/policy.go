package cache

import "time"

// Class buckets resources by how quickly they go stale. The TTL for a
// cached response is chosen by class, not per key: live status changes in
// seconds, display metadata in hours, and catalog data almost never.
type Class int

const (
	// ClassLive is rapidly changing data such as live-stream status.
	ClassLive Class = iota
	// ClassMetadata is display metadata such as user profiles.
	ClassMetadata
	// ClassStatic is near-static catalog data such as game listings.
	ClassStatic
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassLive:
		return "live"
	case ClassMetadata:
		return "metadata"
	case ClassStatic:
		return "static"
	default:
		return "unknown"
	}
}

// Policy maps resource classes to TTLs. A zero TTL disables caching for
// that class.
type Policy struct {
	// LiveTTL applies to ClassLive. Default: 30 seconds
	LiveTTL time.Duration

	// MetadataTTL applies to ClassMetadata. Default: 1 hour
	MetadataTTL time.Duration

	// StaticTTL applies to ClassStatic. Default: 4 hours
	StaticTTL time.Duration
}

// DefaultPolicy returns the default TTL policy.
func DefaultPolicy() Policy {
	return Policy{
		LiveTTL:     30 * time.Second,
		MetadataTTL: time.Hour,
		StaticTTL:   4 * time.Hour,
	}
}

// TTL returns the TTL for the given class.
func (p Policy) TTL(c Class) time.Duration {
	switch c {
	case ClassLive:
		return p.LiveTTL
	case ClassMetadata:
		return p.MetadataTTL
	case ClassStatic:
		return p.StaticTTL
	default:
		return 0
	}
}
