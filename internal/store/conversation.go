package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// ConversationStore defines the interface for pet conversation history
// persistence. The history feeds recent context into dialogue prompts.
type ConversationStore interface {
	// Append saves one conversation message.
	Append(ctx context.Context, msg *domain.ConversationMessage) error

	// Recent retrieves the user's most recent messages in chronological
	// order (oldest of the window first), at most limit entries.
	Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ConversationMessage, error)

	// DeleteByUser removes the user's entire conversation history.
	// Used when a user revokes AI consent.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error

	// WithTx returns a new ConversationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ConversationStore
}
