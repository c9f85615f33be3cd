// Package common defines shared constants and sentinel errors used across
// the GroupTab server layers. Callers should use errors.Is to match these
// values; the HTTP boundary owns the mapping to status codes.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")

	// Validation errors.
	ErrInvalidArgument = errors.New("invalid argument")

	// Auth errors. ErrLoginFailed deliberately covers both "no such user"
	// and "wrong password" so clients cannot enumerate accounts.
	ErrLoginFailed  = errors.New("login failed")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
