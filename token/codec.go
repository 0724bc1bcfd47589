package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when the input is not a parseable token or is
// missing the mandatory expiry claim.
var ErrMalformed = errors.New("malformed token")

// ErrExpired is returned when the token parsed cleanly but its expiry is in
// the past. The decoded claims are returned alongside it.
var ErrExpired = errors.New("token expired")

// DecodeUnsafe parses the payload segment of tokenStr without verifying its
// signature. It never panics. On malformed input it returns (nil,
// ErrMalformed); on a well-formed but expired token it returns the decoded
// claims together with ErrExpired so callers can still inspect identity
// (the refresh path needs this).
//
// The result must never be trusted for authorization on its own: signature
// trust belongs to the issuing service.
func DecodeUnsafe(tokenStr string) (*Claims, error) {
	return DecodeUnsafeAt(tokenStr, time.Now())
}

// DecodeUnsafeAt is DecodeUnsafe with an explicit clock, for deterministic
// expiry checks.
func DecodeUnsafeAt(tokenStr string, now time.Time) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrMalformed
	}

	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrMalformed
	}

	// Expiry is mandatory: a token that cannot expire is treated the same
	// as one that cannot be parsed.
	if claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}

	if claims.Expired(now) {
		return claims, ErrExpired
	}

	return claims, nil
}
