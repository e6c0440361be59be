package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered JWT claims plus the identity claims the
// backend embeds in each bearer token.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"userId,omitempty"`
	Role     string `json:"role,omitempty"`
	ChurchID string `json:"churchId,omitempty"`
}

// Normalize strips a leading bearer scheme and surrounding whitespace from a
// stored credential, so both "abc.def.ghi" and "Bearer abc.def.ghi" yield the
// raw token.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return raw
}

// Decode parses the claims segment of a bearer token WITHOUT verifying its
// signature. Signature verification happens server-side on every request;
// locally only the self-reported claims are read.
func Decode(raw string) (*Claims, error) {
	raw = Normalize(raw)
	if raw == "" {
		return nil, ErrEmptyToken
	}

	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, errors.Join(ErrMalformedToken, err)
	}

	return claims, nil
}

// ExpiresAt returns the expiry instant embedded in the token. The zero time
// and false are returned when the token is malformed or carries no expiry
// claim.
func ExpiresAt(raw string) (time.Time, bool) {
	claims, err := Decode(raw)
	if err != nil || claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
