package shared

import "errors"

var (
	// ErrAdminTokenMissing occurs when a guarded endpoint is called bare.
	ErrAdminTokenMissing = errors.New("admin token missing")
	// ErrAdminTokenMismatch occurs when the supplied admin token is wrong.
	ErrAdminTokenMismatch = errors.New("admin token mismatch")
)
