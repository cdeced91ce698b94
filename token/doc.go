// Package token owns OAuth credential state for the gateway client.
//
// Two credential kinds exist. App tokens come from the client_credentials
// grant and identify the application itself; the Manager obtains one
// lazily, persists it in the shared cache so restarts don't burn an
// exchange, and refreshes it before expiry. User tokens are produced by
// an external consent flow and handed to the Manager through a Store;
// the Manager refreshes them with the refresh_token grant and surfaces
// ErrReauthorizationRequired when the refresh token itself has been
// revoked, at which point the application must re-run consent.
//
// Refreshes are single-flight per credential key: concurrent callers
// needing the same expiring token wait for one in-flight exchange instead
// of issuing duplicates, which matters because some upstreams invalidate
// the previous refresh token on every exchange.
//
// Credentials never appear in logs or JSON output; String, GoString, and
// MarshalJSON all redact the secret material.
package token
