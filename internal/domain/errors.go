package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrEmailAlreadyActive = errors.New("email belongs to an active account")
	// ErrEmailInUse means the identity directory already holds this email
	// while the profile store does not: a zombie left by a partial create.
	// Reactivation cannot heal it, so it must read differently from
	// ErrEmailAlreadyActive in the admin UI.
	ErrEmailInUse       = errors.New("email already registered in the identity directory")
	ErrPermissionDenied = errors.New("permission denied")
	ErrStoreUnavailable = errors.New("store unavailable")
)
