package secret

import (
	"context"
	"fmt"
	"os"
)

// EnvProvider resolves secret references against the process environment.
// The ref is the environment variable name.
type EnvProvider struct{}

// NewEnvProvider creates an environment-backed provider.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Name returns "env".
func (p *EnvProvider) Name() string {
	return "env"
}

// Resolve returns the value of the named environment variable. A missing
// variable is an error; an empty value is left to the Resolver's strict
// mode to reject.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	value, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", ref)
	}
	return value, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error {
	return nil
}

// Ensure EnvProvider implements Provider
var _ Provider = (*EnvProvider)(nil)
