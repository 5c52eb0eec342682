package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/platform/logger"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// SQLiteChallengeStore implements the store.ChallengeStore interface using
// a SQLite database as the storage backend.
type SQLiteChallengeStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewChallengeStore creates a SQLite implementation of the ChallengeStore
// interface. If logger is nil, the default logger is used.
func NewChallengeStore(db store.DBTX, logger *slog.Logger) *SQLiteChallengeStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteChallengeStore{
		db:     db,
		logger: logger.With(slog.String("component", "challenge_store")),
	}
}

var _ store.ChallengeStore = (*SQLiteChallengeStore)(nil)

// WithTx implements store.ChallengeStore.WithTx
func (s *SQLiteChallengeStore) WithTx(tx *sql.Tx) store.ChallengeStore {
	return &SQLiteChallengeStore{db: tx, logger: s.logger}
}

// Create implements store.ChallengeStore.Create
func (s *SQLiteChallengeStore) Create(ctx context.Context, challenge *domain.Challenge) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := challenge.Validate(); err != nil {
		log.Warn("challenge validation failed during create",
			slog.String("error", err.Error()),
			slog.String("challenge_id", challenge.ID.String()))
		return err
	}

	query := `
		INSERT INTO challenges (id, title, description, category, difficulty, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		challenge.ID.String(),
		challenge.Title,
		challenge.Description,
		challenge.Category,
		challenge.Difficulty,
		toMillis(challenge.CreatedAt),
	)
	if err != nil {
		log.Error("failed to create challenge",
			slog.String("error", err.Error()),
			slog.String("challenge_id", challenge.ID.String()))
		return MapError(err)
	}

	log.Info("challenge created",
		slog.String("challenge_id", challenge.ID.String()),
		slog.String("title", challenge.Title))
	return nil
}

// GetByID implements store.ChallengeStore.GetByID
func (s *SQLiteChallengeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	query := `
		SELECT id, title, description, category, difficulty, created_at
		FROM challenges
		WHERE id = ?
	`
	challenge, err := scanChallenge(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrChallengeNotFound
		}
		return nil, MapError(err)
	}
	return challenge, nil
}

// List implements store.ChallengeStore.List
func (s *SQLiteChallengeStore) List(ctx context.Context, filter store.ChallengeFilter) ([]*domain.Challenge, error) {
	query := `
		SELECT id, title, description, category, difficulty, created_at
		FROM challenges
		WHERE (? = '' OR category = ?)
		  AND (? = 0 OR difficulty = ?)
		ORDER BY difficulty, title
	`
	rows, err := s.db.QueryContext(ctx, query,
		filter.Category, filter.Category,
		filter.Difficulty, filter.Difficulty)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectChallenges(rows)
}

// Categories implements store.ChallengeStore.Categories
func (s *SQLiteChallengeStore) Categories(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT category FROM challenges
		WHERE category <> ''
		ORDER BY category
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, MapError(err)
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return categories, nil
}

// Subscribe implements store.ChallengeStore.Subscribe
// Returns store.ErrAlreadySubscribed when the pair already exists and
// store.ErrChallengeNotFound when the challenge is missing.
func (s *SQLiteChallengeStore) Subscribe(ctx context.Context, userID, challengeID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO user_challenges (user_id, challenge_id, subscribed_at)
		VALUES (?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		userID.String(), challengeID.String(), toMillis(time.Now().UTC()))
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrAlreadySubscribed, err)
		}
		if IsForeignKeyViolation(err) {
			// The user row must exist for an authenticated request, so a
			// missing reference points at the challenge.
			return fmt.Errorf("%w: %v", store.ErrChallengeNotFound, err)
		}
		log.Error("failed to subscribe to challenge",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("challenge_id", challengeID.String()))
		return MapError(err)
	}

	log.Info("challenge subscribed",
		slog.String("user_id", userID.String()),
		slog.String("challenge_id", challengeID.String()))
	return nil
}

// Unsubscribe implements store.ChallengeStore.Unsubscribe
func (s *SQLiteChallengeStore) Unsubscribe(ctx context.Context, userID, challengeID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM user_challenges WHERE user_id = ? AND challenge_id = ?`,
		userID.String(), challengeID.String())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotFound)
}

// ListSubscribed implements store.ChallengeStore.ListSubscribed
func (s *SQLiteChallengeStore) ListSubscribed(ctx context.Context, userID uuid.UUID) ([]*domain.Challenge, error) {
	query := `
		SELECT c.id, c.title, c.description, c.category, c.difficulty, c.created_at
		FROM challenges c
		JOIN user_challenges uc ON uc.challenge_id = c.id
		WHERE uc.user_id = ?
		ORDER BY c.difficulty, c.title
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectChallenges(rows)
}

// IsSubscribed implements store.ChallengeStore.IsSubscribed
func (s *SQLiteChallengeStore) IsSubscribed(ctx context.Context, userID, challengeID uuid.UUID) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM user_challenges WHERE user_id = ? AND challenge_id = ?`,
		userID.String(), challengeID.String()).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists > 0, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (*domain.Challenge, error) {
	var (
		challenge domain.Challenge
		id        string
		createdAt int64
	)
	err := row.Scan(
		&id,
		&challenge.Title,
		&challenge.Description,
		&challenge.Category,
		&challenge.Difficulty,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	challenge.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed challenge ID %q", store.ErrInvalidEntity, id)
	}
	challenge.CreatedAt = fromMillis(createdAt)
	return &challenge, nil
}

func collectChallenges(rows *sql.Rows) ([]*domain.Challenge, error) {
	var challenges []*domain.Challenge
	for rows.Next() {
		challenge, err := scanChallenge(rows)
		if err != nil {
			return nil, MapError(err)
		}
		// Incomplete catalog rows are filtered rather than surfaced.
		if challenge.IsComplete() {
			challenges = append(challenges, challenge)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return challenges, nil
}
