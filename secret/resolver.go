package secret

import (
	"context"
	"fmt"
	"strings"
)

// Resolver turns config values into secrets. A value of the form
// "secretref:<provider>:<ref>" is handed to the named provider; any
// other value gets strict ${VAR} expansion and is returned as-is.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. With strict set, a provider
// returning an empty value is an error rather than an empty secret.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		strict:    strict,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider under its Name, replacing any previous one.
func (r *Resolver) Register(provider Provider) {
	if provider == nil {
		return
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue resolves one config value.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}

	providerName, ref, ok := ParseSecretRef(expanded)
	if !ok {
		return expanded, nil
	}

	provider, registered := r.providers[providerName]
	if !registered {
		return "", fmt.Errorf("secret provider %q is not registered", providerName)
	}

	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("secret provider %q returned empty value for %q", providerName, ref)
	}
	return resolved, nil
}

// ParseSecretRef splits a "secretref:<provider>:<ref>" value. ok is
// false for anything else, including malformed references with an
// empty provider or ref.
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	const prefix = "secretref:"
	if !strings.HasPrefix(value, prefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(value, prefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
