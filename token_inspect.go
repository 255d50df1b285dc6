package clubio

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether raw parses as a JWT whose expiry is in the
// past. The client never verifies signatures (that is the backend's job);
// this is only a fast-path to skip a lookup that is certain to fail.
// Opaque non-JWT tokens report false and go to the network as usual.
func TokenExpired(raw string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return exp.Before(time.Now())
}

// TokenSubject extracts the sub claim for logging. Best effort; returns
// empty for opaque tokens.
func TokenSubject(raw string) string {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return ""
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
