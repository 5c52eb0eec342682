package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidDate is returned when a date is malformed or outside the
	// range an operation accepts (e.g. a check-in in the future).
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnauthorized is returned when an operation is not permitted for
	// the requesting user (e.g. deleting another user's wall post).
	ErrUnauthorized = errors.New("unauthorized operation")
)
