package secret

import "context"

// Provider resolves a secret by its reference string, for example an
// environment variable name or a path in an external secret store.
//
// Implementations must be safe for concurrent use and must never log
// resolved values.
type Provider interface {
	// Name identifies the provider in "secretref:<name>:<ref>" values.
	Name() string

	// Resolve returns the secret for ref.
	Resolve(ctx context.Context, ref string) (string, error)

	// Close releases any backing connections.
	Close() error
}
