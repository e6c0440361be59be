package session

import (
	"time"

	"github.com/parishkit/parishkit/core/token"
)

// User is the cached display and authorization summary kept alongside the
// token. It is a denormalized cache, not the source of truth: the token's
// claims and the backend's own authorization decisions are authoritative.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	ChurchID string `json:"churchId,omitempty"`
}

// Session is the client-held record of an authenticated identity.
type Session struct {
	Token string
	User  *User
}

// ExpiresAt returns the expiry instant embedded in the token's claims.
// The second return is false when the token carries no expiry claim or does
// not decode.
func (s Session) ExpiresAt() (time.Time, bool) {
	return token.ExpiresAt(s.Token)
}

// Present reports whether a token exists. Presence alone does not imply
// validity; use core/token for the point-in-time check.
func (s Session) Present() bool {
	return s.Token != ""
}
