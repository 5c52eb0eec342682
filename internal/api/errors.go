package api

import (
	"errors"
	"net/http"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/service"
	"github.com/yuexizhang/kindness-companion/internal/service/auth"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err),
		errors.Is(err, service.ErrNotSubscribed):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned), errors.Is(err, domain.ErrUnauthorized):
		return "You do not own this resource"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrChallengeNotFound):
		return "Challenge not found"
	case errors.Is(err, store.ErrCheckInNotFound):
		return "Check-in not found"
	case errors.Is(err, store.ErrReminderNotFound):
		return "Reminder not found"
	case errors.Is(err, store.ErrPostNotFound):
		return "Post not found"
	case errors.Is(err, store.ErrCommentNotFound):
		return "Comment not found"
	case errors.Is(err, store.ErrReportNotFound):
		return "No report available yet"
	case store.IsNotFoundError(err):
		return "Not found"

	// Conflict errors
	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already registered"
	case errors.Is(err, store.ErrAlreadySubscribed):
		return "Already subscribed to this challenge"
	case errors.Is(err, store.ErrAlreadyCheckedIn):
		return "Already checked in for this day"
	case errors.Is(err, store.ErrAlreadyLiked):
		return "Already liked"
	case errors.Is(err, service.ErrNotSubscribed):
		return "Subscribe to the challenge before checking in"

	// Bad request errors
	case errors.Is(err, domain.ErrInvalidDate):
		return "Invalid date, expected YYYY-MM-DD"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes an error response for a service-layer failure,
// using the mapped status code and a safe message. Domain validation errors
// surface their own text since they are written for users.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	// Domain validation errors carry user-appropriate text.
	if status == http.StatusInternalServerError {
		if validationMessage, ok := domainValidationMessage(err); ok {
			status = http.StatusBadRequest
			message = validationMessage
		}
	}

	respond.ErrorAndLog(w, r, status, message, err)
}

// domainValidationMessage unwraps known domain validation sentinels whose
// messages are safe to show.
func domainValidationMessage(err error) (string, bool) {
	for _, sentinel := range []error{
		domain.ErrEmptyUsername,
		domain.ErrUsernameTooLong,
		domain.ErrInvalidEmail,
		domain.ErrEmptyPassword,
		domain.ErrPasswordTooShort,
		domain.ErrPasswordTooLong,
		domain.ErrEmptyContent,
		domain.ErrPostTooLong,
		domain.ErrCommentTooLong,
		domain.ErrImageTooLarge,
		domain.ErrNotesTooLong,
		domain.ErrFutureCheckIn,
		domain.ErrInvalidTime,
		domain.ErrInvalidWeekday,
		domain.ErrNoDaysSelected,
		domain.ErrInvalidDateRange,
		domain.ErrEmptyMessage,
		domain.ErrInvalidPetEvent,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}
