package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Key builds a cache key of the form {namespace}:{resource}:{id}.
func Key(namespace, resource, id string) string {
	return namespace + ":" + resource + ":" + id
}

// BatchKey builds a deterministic cache key for a multi-ID lookup.
// The IDs are sorted and joined so the same set always produces the same
// key regardless of request order. Keys that would exceed MaxKeyLength
// are collapsed to a SHA-256 digest of the joined list.
func BatchKey(namespace, resource string, ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	joined := strings.Join(sorted, ",")
	key := namespace + ":" + resource + ":" + joined
	if len(key) <= MaxKeyLength {
		return key
	}

	sum := sha256.Sum256([]byte(joined))
	return namespace + ":" + resource + ":" + hex.EncodeToString(sum[:8])
}
