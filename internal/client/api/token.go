package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired reports whether the bearer token carries an exp claim in the
// past. Opaque or claimless tokens return false; the server stays the
// authority on their validity.
func tokenExpired(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}
