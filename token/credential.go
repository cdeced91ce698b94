package token

import (
	"fmt"
	"time"
)

// Kind distinguishes application tokens from user-delegated tokens.
type Kind int

const (
	// KindApp is an application token from the client_credentials grant.
	KindApp Kind = iota
	// KindUser is a user-delegated token from the consent flow.
	KindUser
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindApp:
		return "app"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Credential is an OAuth access token with its lifecycle metadata.
// Instances are immutable once issued; the Manager replaces the whole
// value on refresh.
type Credential struct {
	Kind         Kind
	AccessToken  string
	RefreshToken string // user tokens only
	ExpiresAt    time.Time
	Scopes       []string

	// owner is the user the credential was delegated by. Set by the
	// Manager; empty for app tokens.
	owner string
}

// UserID returns the owning user for a user credential, or "" for app
// credentials.
func (c *Credential) UserID() string {
	if c == nil {
		return ""
	}
	return c.owner
}

// Valid reports whether the credential can still be handed to a caller.
// A token inside the margin window before expiry counts as invalid so a
// valid-looking-but-about-to-expire token is never issued.
func (c *Credential) Valid(margin time.Duration) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	if c.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Before(c.ExpiresAt.Add(-margin))
}

// String redacts the secret material.
func (c *Credential) String() string {
	if c == nil {
		return "token.Credential(nil)"
	}
	return fmt.Sprintf("token.Credential(kind=%s, expires=%s, scopes=%d)",
		c.Kind, c.ExpiresAt.UTC().Format(time.RFC3339), len(c.Scopes))
}

// GoString redacts the secret material from %#v output.
func (c *Credential) GoString() string {
	return c.String()
}

// MarshalJSON refuses to leak the credential through accidental
// serialization. Persistence layers use their own storage types.
func (c *Credential) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// HasScope reports whether the credential carries the given scope.
func (c *Credential) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
