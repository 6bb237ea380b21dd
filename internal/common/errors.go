// Package common defines shared constants and sentinel errors used across
// the server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Authorization errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Throttling.
	ErrRateLimited = errors.New("rate limited")

	// Infrastructure failures (store or cache unreachable). Kept distinct
	// from ErrNotFound so an outage is never read as "not a member".
	ErrInfrastructure = errors.New("infrastructure error")

	// Validation errors.
	ErrValidation = errors.New("validation error")

	// Token lifecycle errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
