package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// DateRange bounds a check-in query. Zero values mean unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ProgressStore defines the interface for check-in persistence.
type ProgressStore interface {
	// Create saves a check-in.
	// Returns ErrAlreadyCheckedIn if a check-in already exists for the
	// same user, challenge, and date, and ErrInvalidEntity if the user or
	// challenge does not exist.
	Create(ctx context.Context, checkIn *domain.CheckIn) error

	// Delete removes the check-in for the given user, challenge, and date.
	// Returns ErrCheckInNotFound if no such check-in exists.
	Delete(ctx context.Context, userID, challengeID uuid.UUID, date time.Time) error

	// ListByChallenge retrieves the user's check-ins for one challenge
	// within the range, newest first.
	ListByChallenge(ctx context.Context, userID, challengeID uuid.UUID, r DateRange) ([]*domain.CheckIn, error)

	// ListByUser retrieves all the user's check-ins within the range,
	// joined with challenge display fields, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID, r DateRange) ([]*domain.CheckInDetail, error)

	// Dates retrieves the distinct check-in dates for one challenge,
	// newest first. Used by the streak calculations.
	Dates(ctx context.Context, userID, challengeID uuid.UUID) ([]time.Time, error)

	// CountByUser returns the user's total number of check-ins.
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)

	// CountByCategory returns the user's number of check-ins against
	// challenges in the given category.
	CountByCategory(ctx context.Context, userID uuid.UUID, category string) (int, error)

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
