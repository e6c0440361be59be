package token

import "errors"

var (
	// ErrEmptyToken is returned when decoding an empty token string.
	ErrEmptyToken = errors.New("token: empty token")
	// ErrMalformedToken is returned when the token cannot be decoded.
	ErrMalformedToken = errors.New("token: malformed token")
)
