// Package errors holds the sentinel errors shared across the client
// packages.
package errors

import "errors"

var (
	// ErrNoRefreshToken means a refresh was requested with nothing to
	// exchange. Callers treat it as "log in again", not a transient
	// failure.
	ErrNoRefreshToken = errors.New("no refresh token available")
)
