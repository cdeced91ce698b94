// Package secret provides a small, dependency-light secret resolution layer
// for gateway credentials.
//
// It supports:
//   - Strict environment expansion (see ExpandEnvStrict)
//   - Pluggable secret providers (see Provider)
//   - Resolving secret references in configuration values (see Resolver)
//
// References use the prefix "secretref:", for example
// secretref:env:TWITCH_CLIENT_SECRET.
//
// Client secrets and refresh tokens should always reach the gateway through
// this layer rather than being written into config files.
package secret
