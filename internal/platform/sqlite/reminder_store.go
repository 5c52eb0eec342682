package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/platform/logger"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// SQLiteReminderStore implements the store.ReminderStore interface using a
// SQLite database as the storage backend.
type SQLiteReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReminderStore creates a SQLite implementation of the ReminderStore
// interface. If logger is nil, the default logger is used.
func NewReminderStore(db store.DBTX, logger *slog.Logger) *SQLiteReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

var _ store.ReminderStore = (*SQLiteReminderStore)(nil)

// WithTx implements store.ReminderStore.WithTx
func (s *SQLiteReminderStore) WithTx(tx *sql.Tx) store.ReminderStore {
	return &SQLiteReminderStore{db: tx, logger: s.logger}
}

const reminderDetailQuery = `
	SELECT r.id, r.user_id, r.challenge_id, r.time_of_day, r.days, r.enabled, r.created_at, c.title
	FROM reminders r
	JOIN challenges c ON c.id = r.challenge_id
`

// Create implements store.ReminderStore.Create
func (s *SQLiteReminderStore) Create(ctx context.Context, reminder *domain.Reminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reminder.Validate(); err != nil {
		log.Warn("reminder validation failed during create",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return err
	}

	query := `
		INSERT INTO reminders (id, user_id, challenge_id, time_of_day, days, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		reminder.ID.String(),
		reminder.UserID.String(),
		reminder.ChallengeID.String(),
		reminder.TimeOfDay,
		int(reminder.Days),
		reminder.Enabled,
		toMillis(reminder.CreatedAt),
	)
	if err != nil {
		log.Error("failed to create reminder",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return MapError(err)
	}

	log.Info("reminder created",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("user_id", reminder.UserID.String()),
		slog.String("time_of_day", reminder.TimeOfDay))
	return nil
}

// GetByID implements store.ReminderStore.GetByID
func (s *SQLiteReminderStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReminderDetail, error) {
	row := s.db.QueryRowContext(ctx, reminderDetailQuery+` WHERE r.id = ?`, id.String())
	detail, err := scanReminderDetail(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReminderNotFound
		}
		return nil, MapError(err)
	}
	return detail, nil
}

// Update implements store.ReminderStore.Update
func (s *SQLiteReminderStore) Update(ctx context.Context, reminder *domain.Reminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := reminder.Validate(); err != nil {
		log.Warn("reminder validation failed during update",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE reminders SET time_of_day = ?, days = ?, enabled = ? WHERE id = ?`,
		reminder.TimeOfDay,
		int(reminder.Days),
		reminder.Enabled,
		reminder.ID.String(),
	)
	if err != nil {
		log.Error("failed to update reminder",
			slog.String("error", err.Error()),
			slog.String("reminder_id", reminder.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReminderNotFound)
}

// Delete implements store.ReminderStore.Delete
func (s *SQLiteReminderStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, id.String())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReminderNotFound)
}

// ListByUser implements store.ReminderStore.ListByUser
func (s *SQLiteReminderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReminderDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		reminderDetailQuery+` WHERE r.user_id = ? ORDER BY r.time_of_day, c.title`,
		userID.String())
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectReminderDetails(rows)
}

// ListEnabled implements store.ReminderStore.ListEnabled
func (s *SQLiteReminderStore) ListEnabled(ctx context.Context) ([]*domain.ReminderDetail, error) {
	rows, err := s.db.QueryContext(ctx,
		reminderDetailQuery+` WHERE r.enabled ORDER BY r.time_of_day`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectReminderDetails(rows)
}

func scanReminderDetail(row rowScanner) (*domain.ReminderDetail, error) {
	var (
		detail    domain.ReminderDetail
		id        string
		uid       string
		cid       string
		days      int
		createdAt int64
	)
	err := row.Scan(
		&id, &uid, &cid,
		&detail.TimeOfDay, &days, &detail.Enabled, &createdAt,
		&detail.ChallengeTitle,
	)
	if err != nil {
		return nil, err
	}

	if detail.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed reminder ID %q", store.ErrInvalidEntity, id)
	}
	if detail.UserID, err = uuid.Parse(uid); err != nil {
		return nil, fmt.Errorf("%w: malformed user ID %q", store.ErrInvalidEntity, uid)
	}
	if detail.ChallengeID, err = uuid.Parse(cid); err != nil {
		return nil, fmt.Errorf("%w: malformed challenge ID %q", store.ErrInvalidEntity, cid)
	}
	detail.Days = domain.Weekdays(days)
	detail.CreatedAt = fromMillis(createdAt)
	return &detail, nil
}

func collectReminderDetails(rows *sql.Rows) ([]*domain.ReminderDetail, error) {
	var details []*domain.ReminderDetail
	for rows.Next() {
		detail, err := scanReminderDetail(rows)
		if err != nil {
			return nil, MapError(err)
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return details, nil
}
