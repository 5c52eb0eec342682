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
	"github.com/yuexizhang/kindness-companion/internal/service/auth"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// SQLiteUserStore implements the store.UserStore interface using a SQLite
// database as the storage backend.
type SQLiteUserStore struct {
	db     store.DBTX
	logger *slog.Logger
	hasher auth.PasswordHasher
}

// NewUserStore creates a SQLite implementation of the UserStore interface.
// The database handle or transaction is initialized and managed by the
// caller. If logger is nil, the default logger is used.
func NewUserStore(db store.DBTX, logger *slog.Logger, hasher auth.PasswordHasher) *SQLiteUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if hasher == nil {
		panic("hasher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteUserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
		hasher: hasher,
	}
}

var _ store.UserStore = (*SQLiteUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *SQLiteUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &SQLiteUserStore{
		db:     tx,
		logger: s.logger,
		hasher: s.hasher,
	}
}

const userColumns = `id, username, hashed_password, email, bio, avatar_path, ai_consent, created_at, updated_at, last_login_at`

// Create implements store.UserStore.Create
// It hashes the plaintext password before storing the user.
// Returns store.ErrUsernameExists or store.ErrEmailExists on uniqueness
// conflicts.
func (s *SQLiteUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}
	user.HashedPassword = hashed
	user.Password = ""

	query := `
		INSERT INTO users (id, username, hashed_password, email, bio, avatar_path, ai_consent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		user.ID.String(),
		user.Username,
		user.HashedPassword,
		nullString(user.Email),
		user.Bio,
		user.AvatarPath,
		nullBool(user.AIConsent),
		toMillis(user.CreatedAt),
		toMillis(user.UpdatedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return s.mapUniqueUserError(err)
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	return nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *SQLiteUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id.String()))
}

// GetByUsername implements store.UserStore.GetByUsername
// Returns store.ErrUserNotFound if the user does not exist.
func (s *SQLiteUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, query, username))
}

// Update implements store.UserStore.Update
// A non-empty plaintext Password is hashed and replaces the stored hash.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *SQLiteUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.Password != "" {
		if err := domain.ValidatePassword(user.Password); err != nil {
			return err
		}
		hashed, err := s.hasher.Hash(user.Password)
		if err != nil {
			log.Error("failed to hash password during update",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
			return err
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = ?, hashed_password = ?, email = ?, bio = ?, avatar_path = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Username,
		user.HashedPassword,
		nullString(user.Email),
		user.Bio,
		user.AvatarPath,
		toMillis(user.UpdatedAt),
		user.ID.String(),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return s.mapUniqueUserError(err)
		}
		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// RecordLogin implements store.UserStore.RecordLogin
func (s *SQLiteUserStore) RecordLogin(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET last_login_at = ?, updated_at = ? WHERE id = ?`,
		toMillis(now),
		toMillis(now),
		id.String(),
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// SetAIConsent implements store.UserStore.SetAIConsent
func (s *SQLiteUserStore) SetAIConsent(ctx context.Context, id uuid.UUID, granted bool) error {
	result, err := s.db.ExecContext(
		ctx,
		`UPDATE users SET ai_consent = ?, updated_at = ? WHERE id = ?`,
		granted,
		toMillis(time.Now().UTC()),
		id.String(),
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
// Dependent rows are removed by the schema's ON DELETE CASCADE clauses.
func (s *SQLiteUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted", slog.String("user_id", id.String()))
	return nil
}

// mapUniqueUserError narrows a unique violation to the specific field error.
func (s *SQLiteUserStore) mapUniqueUserError(err error) error {
	msg := err.Error()
	switch {
	case containsColumn(msg, "users.username"):
		return fmt.Errorf("%w: %v", store.ErrUsernameExists, err)
	case containsColumn(msg, "users.email"):
		return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
	default:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
}

func (s *SQLiteUserStore) scanUser(row *sql.Row) (*domain.User, error) {
	var (
		user        domain.User
		id          string
		email       sql.NullString
		aiConsent   sql.NullBool
		createdAt   int64
		updatedAt   int64
		lastLoginAt sql.NullInt64
	)

	err := row.Scan(
		&id,
		&user.Username,
		&user.HashedPassword,
		&email,
		&user.Bio,
		&user.AvatarPath,
		&aiConsent,
		&createdAt,
		&updatedAt,
		&lastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, MapError(err)
	}

	user.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user ID %q", store.ErrInvalidEntity, id)
	}
	user.Email = email.String
	if aiConsent.Valid {
		consent := aiConsent.Bool
		user.AIConsent = &consent
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	if lastLoginAt.Valid {
		t := fromMillis(lastLoginAt.Int64)
		user.LastLoginAt = &t
	}

	return &user, nil
}
