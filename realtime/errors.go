package realtime

import "errors"

var (
	// ErrConnClosed is returned when sending on a closed connection.
	ErrConnClosed = errors.New("realtime: connection closed")

	// ErrEmptyServiceID is returned when dialing without a service ID.
	ErrEmptyServiceID = errors.New("realtime: empty service ID")

	// ErrNoCredential is returned when dialing without a stored session token.
	ErrNoCredential = errors.New("realtime: no stored credential")
)
