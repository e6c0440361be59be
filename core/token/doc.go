// Package token decides, at the moment of the call, whether the locally held
// bearer token is still usable.
//
// Validation is purely offline: the claims segment is decoded without
// signature verification and the embedded expiry claim is compared against
// the current time. The backend remains the authority on every request; the
// worst case of a doctored local token is a client that merely believes it is
// logged in longer than it should.
//
//	validator := token.NewValidator(store)
//	if !validator.IsValid(ctx) {
//		// redirect to login
//	}
//
// A token revoked server-side before its natural expiry is still treated as
// locally valid until the next backend request surfaces an authorization
// failure.
package token
