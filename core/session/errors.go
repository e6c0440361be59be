package session

import "errors"

var (
	// ErrNoSession is returned when reading session state while logged out.
	ErrNoSession = errors.New("session: no session present")
	// ErrEmptyToken is returned when logging in with an empty token.
	ErrEmptyToken = errors.New("session: empty token")
	// ErrStoreFailed wraps persistence failures of the underlying medium.
	ErrStoreFailed = errors.New("session: store operation failed")
)
