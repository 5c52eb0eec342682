package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// It handles domain validation and password hashing internally.
	// Returns ErrUsernameExists or ErrEmailExists on uniqueness conflicts.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByUsername retrieves a user by their username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update modifies an existing user's details. The caller MUST provide a
	// complete user object including HashedPassword. If a new plaintext
	// Password is set, it is hashed and replaces the stored hash.
	// Returns ErrUserNotFound if the user does not exist.
	Update(ctx context.Context, user *domain.User) error

	// RecordLogin stamps the user's last_login_at with the current time.
	// Returns ErrUserNotFound if the user does not exist.
	RecordLogin(ctx context.Context, id uuid.UUID) error

	// SetAIConsent records the user's AI processing consent decision.
	// Returns ErrUserNotFound if the user does not exist.
	SetAIConsent(ctx context.Context, id uuid.UUID, granted bool) error

	// Delete removes a user from the store by their ID, cascading to their
	// subscriptions, check-ins, reminders, reports, and conversation rows.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new UserStore instance that uses the provided transaction.
	// The transaction is created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) UserStore
}
