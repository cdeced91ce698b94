package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expiryFromJWT extracts the exp claim from a JWT-shaped access token.
// The signature is deliberately not verified: the token came from the
// token endpoint over TLS and the upstream remains the authority on its
// validity; we only need the expiry for refresh scheduling.
func expiryFromJWT(raw string) (time.Time, bool) {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
