package session

import "context"

// Store defines durable client-side persistence for the session fields.
// Implementations must handle concurrent access safely within one process;
// synchronous visibility of writes across separate processes is not part of
// the contract.
type Store interface {
	// Write persists token and user summary together. Subsequent reads
	// observe the new values immediately.
	Write(ctx context.Context, token string, user *User) error

	// Read returns the stored token, or an empty string when absent.
	Read(ctx context.Context) (string, error)

	// ReadUser returns the stored user summary. A summary that is absent or
	// fails to parse yields nil; a parse failure additionally clears the
	// whole store, since partially corrupt session data is worse than none.
	ReadUser(ctx context.Context) (*User, error)

	// Clear removes all session fields.
	Clear(ctx context.Context) error
}
