package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// ReminderStore defines the interface for reminder persistence.
type ReminderStore interface {
	// Create saves a reminder.
	// Returns ErrInvalidEntity if the user or challenge does not exist.
	Create(ctx context.Context, reminder *domain.Reminder) error

	// GetByID retrieves a reminder (with its challenge title) by ID.
	// Returns ErrReminderNotFound if the reminder does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReminderDetail, error)

	// Update modifies a reminder's time, days, and enabled flag.
	// Returns ErrReminderNotFound if the reminder does not exist.
	Update(ctx context.Context, reminder *domain.Reminder) error

	// Delete removes a reminder.
	// Returns ErrReminderNotFound if the reminder does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByUser retrieves the user's reminders (with challenge titles),
	// ordered by time of day.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReminderDetail, error)

	// ListEnabled retrieves every enabled reminder (with challenge titles)
	// across all users, for scheduler startup.
	ListEnabled(ctx context.Context) ([]*domain.ReminderDetail, error)

	// WithTx returns a new ReminderStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReminderStore
}
