package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// ChallengeFilter narrows challenge listings. Zero values mean "no filter".
type ChallengeFilter struct {
	Category   string
	Difficulty int
}

// ChallengeStore defines the interface for challenge catalog persistence
// and challenge subscriptions.
type ChallengeStore interface {
	// Create saves a new challenge to the store.
	Create(ctx context.Context, challenge *domain.Challenge) error

	// GetByID retrieves a challenge by its ID.
	// Returns ErrChallengeNotFound if the challenge does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)

	// List retrieves challenges matching the filter, ordered by
	// difficulty then title.
	List(ctx context.Context, filter ChallengeFilter) ([]*domain.Challenge, error)

	// Categories retrieves the distinct non-empty category names,
	// sorted alphabetically.
	Categories(ctx context.Context) ([]string, error)

	// Subscribe records a subscription for the user.
	// Returns ErrAlreadySubscribed if the pair already exists and
	// ErrChallengeNotFound if the challenge does not exist.
	Subscribe(ctx context.Context, userID, challengeID uuid.UUID) error

	// Unsubscribe removes the user's subscription.
	// Returns ErrNotFound if no subscription exists.
	Unsubscribe(ctx context.Context, userID, challengeID uuid.UUID) error

	// ListSubscribed retrieves the challenges the user subscribes to,
	// ordered by difficulty then title.
	ListSubscribed(ctx context.Context, userID uuid.UUID) ([]*domain.Challenge, error)

	// IsSubscribed reports whether the user subscribes to the challenge.
	IsSubscribed(ctx context.Context, userID, challengeID uuid.UUID) (bool, error)

	// WithTx returns a new ChallengeStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ChallengeStore
}
