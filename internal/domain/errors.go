package domain

import "errors"

var (
	// ErrUnauthorized covers every credential failure: missing header,
	// malformed token, unknown hash. Callers must not be able to tell
	// these apart.
	ErrUnauthorized = errors.New("unauthorized")

	ErrNotFound = errors.New("not found")
)
