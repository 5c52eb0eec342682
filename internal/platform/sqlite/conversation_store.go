package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/platform/logger"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// SQLiteConversationStore implements the store.ConversationStore interface
// using a SQLite database as the storage backend.
type SQLiteConversationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewConversationStore creates a SQLite implementation of the
// ConversationStore interface. If logger is nil, the default logger is used.
func NewConversationStore(db store.DBTX, logger *slog.Logger) *SQLiteConversationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteConversationStore{
		db:     db,
		logger: logger.With(slog.String("component", "conversation_store")),
	}
}

var _ store.ConversationStore = (*SQLiteConversationStore)(nil)

// WithTx implements store.ConversationStore.WithTx
func (s *SQLiteConversationStore) WithTx(tx *sql.Tx) store.ConversationStore {
	return &SQLiteConversationStore{db: tx, logger: s.logger}
}

// Append implements store.ConversationStore.Append
func (s *SQLiteConversationStore) Append(ctx context.Context, msg *domain.ConversationMessage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.UserID == uuid.Nil {
		return domain.ErrEmptyUserID
	}
	if msg.Message == "" {
		return domain.ErrEmptyMessage
	}

	query := `
		INSERT INTO conversation_history (id, user_id, message, is_user, context_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		msg.ID.String(),
		msg.UserID.String(),
		msg.Message,
		msg.IsUser,
		nullString(msg.ContextID),
		toMillis(msg.CreatedAt),
	)
	if err != nil {
		log.Error("failed to append conversation message",
			slog.String("error", err.Error()),
			slog.String("user_id", msg.UserID.String()))
		return MapError(err)
	}
	return nil
}

// Recent implements store.ConversationStore.Recent
// The inner query selects the newest messages; the outer one restores
// chronological order for prompt assembly.
func (s *SQLiteConversationStore) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ConversationMessage, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, message, is_user, context_id, created_at
		FROM (
			SELECT id, user_id, message, is_user, context_id, created_at
			FROM conversation_history
			WHERE user_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		)
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String(), limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*domain.ConversationMessage
	for rows.Next() {
		var (
			msg       domain.ConversationMessage
			id        string
			uid       string
			contextID sql.NullString
			createdAt int64
		)
		err := rows.Scan(&id, &uid, &msg.Message, &msg.IsUser, &contextID, &createdAt)
		if err != nil {
			return nil, MapError(err)
		}
		if msg.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: malformed message ID %q", store.ErrInvalidEntity, id)
		}
		if msg.UserID, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("%w: malformed user ID %q", store.ErrInvalidEntity, uid)
		}
		msg.ContextID = contextID.String
		msg.CreatedAt = fromMillis(createdAt)
		messages = append(messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return messages, nil
}

// DeleteByUser implements store.ConversationStore.DeleteByUser
// Zero deleted rows is not an error: revoking consent with an empty
// history is a no-op.
func (s *SQLiteConversationStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM conversation_history WHERE user_id = ?`, userID.String())
	if err != nil {
		log.Error("failed to delete conversation history",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return MapError(err)
	}

	log.Info("conversation history deleted", slog.String("user_id", userID.String()))
	return nil
}
