package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrChallengeNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same username, or a second
	// check-in for the same day).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or when it references a row that does not exist.
	// Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrChallengeNotFound indicates that the requested challenge does not exist in the store.
	ErrChallengeNotFound = fmt.Errorf("%w: challenge", ErrNotFound)

	// ErrCheckInNotFound indicates that the requested check-in does not exist in the store.
	ErrCheckInNotFound = fmt.Errorf("%w: check-in", ErrNotFound)

	// ErrReminderNotFound indicates that the requested reminder does not exist in the store.
	ErrReminderNotFound = fmt.Errorf("%w: reminder", ErrNotFound)

	// ErrPostNotFound indicates that the requested wall post does not exist in the store.
	ErrPostNotFound = fmt.Errorf("%w: wall post", ErrNotFound)

	// ErrCommentNotFound indicates that the requested comment does not exist in the store.
	ErrCommentNotFound = fmt.Errorf("%w: comment", ErrNotFound)

	// ErrReportNotFound indicates that the requested weekly report does not exist in the store.
	ErrReportNotFound = fmt.Errorf("%w: weekly report", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrUsernameExists indicates that a user with the given username already exists.
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrAlreadySubscribed indicates the user already subscribes to the challenge.
	ErrAlreadySubscribed = fmt.Errorf("%w: subscription", ErrDuplicate)

	// ErrAlreadyCheckedIn indicates a check-in already exists for the
	// (user, challenge, date) triple.
	ErrAlreadyCheckedIn = fmt.Errorf("%w: check-in", ErrDuplicate)

	// ErrAlreadyLiked indicates the user already liked the post or comment.
	ErrAlreadyLiked = fmt.Errorf("%w: like", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
