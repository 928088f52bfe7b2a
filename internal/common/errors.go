// Package common defines shared constants and sentinel errors used across
// the Math Mystery server layers. Callers should use errors.Is to match
// these values; lower layers wrap them with additional context.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors: malformed update events, bad coercions, unknown event types.
	ErrValidation = errors.New("validation error")

	// Persisted game state that cannot be parsed back into its canonical shape.
	ErrCorruptState = errors.New("corrupt game state")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Store lifecycle errors.
	ErrPoolClosed = errors.New("database pool is closed")
)
