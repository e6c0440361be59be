package token

import (
	"context"
	"time"
)

// Source provides the currently stored credential.
// Implemented by session.Store.
type Source interface {
	// Read returns the stored token, or an empty string when absent.
	Read(ctx context.Context) (string, error)
}

// Validator answers point-in-time validity checks against the stored token.
// Validity is re-evaluated on every call rather than cached.
type Validator struct {
	source Source
	now    func() time.Time
}

// ValidatorOption configures the validator.
type ValidatorOption func(*Validator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// NewValidator creates a validator over the given token source.
func NewValidator(source Source, opts ...ValidatorOption) *Validator {
	v := &Validator{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsValid reports whether the stored token exists, decodes, and has not
// expired. It never returns an error: absent, unreadable, malformed, and
// expired tokens are all simply invalid.
func (v *Validator) IsValid(ctx context.Context) bool {
	raw, err := v.source.Read(ctx)
	if err != nil || raw == "" {
		return false
	}

	claims, err := Decode(raw)
	if err != nil {
		return false
	}

	if claims.ExpiresAt == nil {
		// No expiry claim means the backend issued a non-expiring token.
		return true
	}

	return v.now().Before(claims.ExpiresAt.Time)
}
