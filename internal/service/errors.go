package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check for these with errors.Is(); the API layer maps them to
// HTTP status codes.
var (
	// ErrInvalidCredentials indicates a login attempt with an unknown
	// username or a wrong password. The two cases are deliberately not
	// distinguished. API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrNotOwned indicates a resource is owned by a different user than
	// the one making the request. API layer should map this to HTTP 403
	// Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrNotSubscribed indicates an operation that requires an active
	// challenge subscription, such as checking in. API layer should map
	// this to HTTP 409 Conflict.
	ErrNotSubscribed = errors.New("user is not subscribed to this challenge")
)
