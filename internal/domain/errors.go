package domain

import "errors"

// Sentinel errors for client operations
var (
	// ErrAuthRequired indicates the backend rejected the credential token (401)
	ErrAuthRequired = errors.New("authentication required")

	// ErrForbidden indicates a valid session with insufficient role (403)
	ErrForbidden = errors.New("operation not permitted for this role")

	// ErrInvalidCredentials indicates a rejected login attempt
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrNotFound indicates the requested entity does not exist (404)
	ErrNotFound = errors.New("resource not found")

	// ErrServerOffline indicates the backend is unreachable
	ErrServerOffline = errors.New("distribution server is unreachable")
)
