// Package common defines shared constants and sentinel errors used across
// the Sparkle client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Malformed local request (missing file data, empty secret). Rejected
	// before any network call, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// A gated operation was attempted without a valid master-password
	// session.
	ErrAuthRequired = errors.New("master password verification required")

	// The remote verifier rejected the supplied master password. Distinct
	// from ErrUnavailable so the UI can tell "wrong password" from
	// "check your connection".
	ErrVerificationFailed = errors.New("master password verification failed")

	// Network failure, timeout, or non-2xx from any remote call.
	ErrUnavailable = errors.New("server unavailable")

	// The bearer token was missing or rejected.
	ErrUnauthorized = errors.New("unauthorized")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
