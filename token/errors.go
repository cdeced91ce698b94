package token

import "errors"

// Sentinel errors for the token lifecycle.
var (
	// ErrExchangeFailed is returned when a token-endpoint exchange fails
	// for transport or server-side reasons.
	ErrExchangeFailed = errors.New("token: exchange failed")

	// ErrReauthorizationRequired is returned when a refresh token has been
	// revoked or invalidated. The caller must re-run the consent flow;
	// retrying the refresh cannot succeed.
	ErrReauthorizationRequired = errors.New("token: reauthorization required")

	// ErrNotFound is returned when no credential exists for a user.
	ErrNotFound = errors.New("token: credential not found")

	// ErrNoRefreshToken is returned when a credential cannot be refreshed
	// because it carries no refresh token.
	ErrNoRefreshToken = errors.New("token: no refresh token")

	// ErrNoStore is returned when a user-credential operation is attempted
	// on a Manager configured without a Store.
	ErrNoStore = errors.New("token: no user token store configured")
)
