package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/platform/logger"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// SQLiteProgressStore implements the store.ProgressStore interface using a
// SQLite database as the storage backend.
type SQLiteProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProgressStore creates a SQLite implementation of the ProgressStore
// interface. If logger is nil, the default logger is used.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *SQLiteProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*SQLiteProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *SQLiteProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &SQLiteProgressStore{db: tx, logger: s.logger}
}

// Create implements store.ProgressStore.Create
// Returns store.ErrAlreadyCheckedIn when the (user, challenge, date)
// triple already exists.
func (s *SQLiteProgressStore) Create(ctx context.Context, checkIn *domain.CheckIn) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := checkIn.Validate(); err != nil {
		log.Warn("check-in validation failed during create",
			slog.String("error", err.Error()),
			slog.String("check_in_id", checkIn.ID.String()))
		return err
	}

	query := `
		INSERT INTO progress (id, user_id, challenge_id, check_in_date, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		checkIn.ID.String(),
		checkIn.UserID.String(),
		checkIn.ChallengeID.String(),
		domain.FormatDate(checkIn.Date),
		checkIn.Notes,
		toMillis(checkIn.CreatedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrAlreadyCheckedIn, err)
		}
		log.Error("failed to create check-in",
			slog.String("error", err.Error()),
			slog.String("user_id", checkIn.UserID.String()),
			slog.String("challenge_id", checkIn.ChallengeID.String()))
		return MapError(err)
	}

	log.Info("check-in recorded",
		slog.String("user_id", checkIn.UserID.String()),
		slog.String("challenge_id", checkIn.ChallengeID.String()),
		slog.String("date", domain.FormatDate(checkIn.Date)))
	return nil
}

// Delete implements store.ProgressStore.Delete
func (s *SQLiteProgressStore) Delete(ctx context.Context, userID, challengeID uuid.UUID, date time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM progress WHERE user_id = ? AND challenge_id = ? AND check_in_date = ?`,
		userID.String(), challengeID.String(), domain.FormatDate(date))
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCheckInNotFound)
}

// ListByChallenge implements store.ProgressStore.ListByChallenge
func (s *SQLiteProgressStore) ListByChallenge(
	ctx context.Context,
	userID, challengeID uuid.UUID,
	r store.DateRange,
) ([]*domain.CheckIn, error) {
	query := `
		SELECT id, user_id, challenge_id, check_in_date, notes, created_at
		FROM progress
		WHERE user_id = ? AND challenge_id = ?
		  AND (? = '' OR check_in_date >= ?)
		  AND (? = '' OR check_in_date <= ?)
		ORDER BY check_in_date DESC
	`
	start, end := rangeBounds(r)
	rows, err := s.db.QueryContext(ctx, query,
		userID.String(), challengeID.String(),
		start, start, end, end)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var checkIns []*domain.CheckIn
	for rows.Next() {
		checkIn, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkIns = append(checkIns, checkIn)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return checkIns, nil
}

// ListByUser implements store.ProgressStore.ListByUser
func (s *SQLiteProgressStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	r store.DateRange,
) ([]*domain.CheckInDetail, error) {
	query := `
		SELECT p.id, p.user_id, p.challenge_id, p.check_in_date, p.notes, p.created_at,
		       c.title, c.category, c.difficulty
		FROM progress p
		JOIN challenges c ON c.id = p.challenge_id
		WHERE p.user_id = ?
		  AND (? = '' OR p.check_in_date >= ?)
		  AND (? = '' OR p.check_in_date <= ?)
		ORDER BY p.check_in_date DESC, c.title
	`
	start, end := rangeBounds(r)
	rows, err := s.db.QueryContext(ctx, query,
		userID.String(), start, start, end, end)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var details []*domain.CheckInDetail
	for rows.Next() {
		var (
			detail    domain.CheckInDetail
			id        string
			uid       string
			cid       string
			date      string
			createdAt int64
		)
		err := rows.Scan(
			&id, &uid, &cid, &date, &detail.Notes, &createdAt,
			&detail.ChallengeTitle, &detail.ChallengeCategory, &detail.ChallengeDifficulty,
		)
		if err != nil {
			return nil, MapError(err)
		}
		if err := fillCheckIn(&detail.CheckIn, id, uid, cid, date, createdAt); err != nil {
			return nil, err
		}
		details = append(details, &detail)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return details, nil
}

// Dates implements store.ProgressStore.Dates
func (s *SQLiteProgressStore) Dates(ctx context.Context, userID, challengeID uuid.UUID) ([]time.Time, error) {
	query := `
		SELECT DISTINCT check_in_date
		FROM progress
		WHERE user_id = ? AND challenge_id = ?
		ORDER BY check_in_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String(), challengeID.String())
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, MapError(err)
		}
		date, err := domain.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed check-in date %q", store.ErrInvalidEntity, raw)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return dates, nil
}

// CountByUser implements store.ProgressStore.CountByUser
func (s *SQLiteProgressStore) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM progress WHERE user_id = ?`,
		userID.String()).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// CountByCategory implements store.ProgressStore.CountByCategory
func (s *SQLiteProgressStore) CountByCategory(ctx context.Context, userID uuid.UUID, category string) (int, error) {
	query := `
		SELECT COUNT(1)
		FROM progress p
		JOIN challenges c ON c.id = p.challenge_id
		WHERE p.user_id = ? AND c.category = ?
	`
	var count int
	err := s.db.QueryRowContext(ctx, query, userID.String(), category).Scan(&count)
	if err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// rangeBounds renders a DateRange's bounds as storage-format strings,
// with empty strings meaning unbounded.
func rangeBounds(r store.DateRange) (start, end string) {
	if !r.Start.IsZero() {
		start = domain.FormatDate(r.Start)
	}
	if !r.End.IsZero() {
		end = domain.FormatDate(r.End)
	}
	return start, end
}

func scanCheckIn(row rowScanner) (*domain.CheckIn, error) {
	var (
		checkIn   domain.CheckIn
		id        string
		uid       string
		cid       string
		date      string
		createdAt int64
	)
	err := row.Scan(&id, &uid, &cid, &date, &checkIn.Notes, &createdAt)
	if err != nil {
		return nil, MapError(err)
	}
	if err := fillCheckIn(&checkIn, id, uid, cid, date, createdAt); err != nil {
		return nil, err
	}
	return &checkIn, nil
}

// fillCheckIn parses the raw storage columns into the domain struct.
func fillCheckIn(checkIn *domain.CheckIn, id, uid, cid, date string, createdAt int64) error {
	var err error
	if checkIn.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed check-in ID %q", store.ErrInvalidEntity, id)
	}
	if checkIn.UserID, err = uuid.Parse(uid); err != nil {
		return fmt.Errorf("%w: malformed user ID %q", store.ErrInvalidEntity, uid)
	}
	if checkIn.ChallengeID, err = uuid.Parse(cid); err != nil {
		return fmt.Errorf("%w: malformed challenge ID %q", store.ErrInvalidEntity, cid)
	}
	if checkIn.Date, err = domain.ParseDate(date); err != nil {
		return fmt.Errorf("%w: malformed check-in date %q", store.ErrInvalidEntity, date)
	}
	checkIn.CreatedAt = fromMillis(createdAt)
	return nil
}
