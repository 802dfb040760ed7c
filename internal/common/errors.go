// Package common defines shared constants and sentinel errors used across
// the docverify server and CLI. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrCodeConflict is returned when a freshly generated verification code
	// collides with one already stored. Callers regenerate and retry.
	ErrCodeConflict = errors.New("verification code conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidSignatureData = errors.New("invalid signature data")

	// Document lifecycle errors.
	ErrDocumentNotFinalized = errors.New("document is not finalized")
	ErrCodeSpaceExhausted   = errors.New("could not allocate a unique verification code")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
