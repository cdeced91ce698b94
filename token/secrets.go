package token

import (
	"context"
	"fmt"

	"github.com/jonwraymond/helixgate/secret"
)

// ResolveSecrets resolves secret references in the config's credential
// fields. ClientSecret may be a literal, a ${VAR} expansion, or a
// "secretref:<provider>:<ref>" reference handled by the resolver. Call
// this before NewEndpoint so config files never carry the secret itself.
func (c *EndpointConfig) ResolveSecrets(ctx context.Context, resolver *secret.Resolver) error {
	resolved, err := resolver.ResolveValue(ctx, c.ClientSecret)
	if err != nil {
		return fmt.Errorf("token: resolve client secret: %w", err)
	}
	c.ClientSecret = resolved
	return nil
}
