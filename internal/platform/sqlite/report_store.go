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

// SQLiteReportStore implements the store.ReportStore interface using a
// SQLite database as the storage backend.
type SQLiteReportStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReportStore creates a SQLite implementation of the ReportStore
// interface. If logger is nil, the default logger is used.
func NewReportStore(db store.DBTX, logger *slog.Logger) *SQLiteReportStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteReportStore{
		db:     db,
		logger: logger.With(slog.String("component", "report_store")),
	}
}

var _ store.ReportStore = (*SQLiteReportStore)(nil)

// WithTx implements store.ReportStore.WithTx
func (s *SQLiteReportStore) WithTx(tx *sql.Tx) store.ReportStore {
	return &SQLiteReportStore{db: tx, logger: s.logger}
}

const reportColumns = `id, user_id, report_text, start_date, end_date, created_at`

// Save implements store.ReportStore.Save
// Regenerating a report for a range the user already has replaces the
// stored text in place.
func (s *SQLiteReportStore) Save(ctx context.Context, report *domain.WeeklyReport) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := report.Validate(); err != nil {
		log.Warn("report validation failed during save",
			slog.String("error", err.Error()),
			slog.String("report_id", report.ID.String()))
		return err
	}

	query := `
		INSERT INTO weekly_reports (id, user_id, report_text, start_date, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, start_date, end_date)
		DO UPDATE SET report_text = excluded.report_text, created_at = excluded.created_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		report.ID.String(),
		report.UserID.String(),
		report.ReportText,
		domain.FormatDate(report.StartDate),
		domain.FormatDate(report.EndDate),
		toMillis(report.CreatedAt),
	)
	if err != nil {
		log.Error("failed to save weekly report",
			slog.String("error", err.Error()),
			slog.String("user_id", report.UserID.String()))
		return MapError(err)
	}

	log.Info("weekly report saved",
		slog.String("user_id", report.UserID.String()),
		slog.String("start_date", domain.FormatDate(report.StartDate)),
		slog.String("end_date", domain.FormatDate(report.EndDate)))
	return nil
}

// GetLatest implements store.ReportStore.GetLatest
func (s *SQLiteReportStore) GetLatest(ctx context.Context, userID uuid.UUID) (*domain.WeeklyReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM weekly_reports
		WHERE user_id = ?
		ORDER BY end_date DESC, created_at DESC
		LIMIT 1
	`
	report, err := scanReport(s.db.QueryRowContext(ctx, query, userID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReportNotFound
		}
		return nil, MapError(err)
	}
	return report, nil
}

// GetByRange implements store.ReportStore.GetByRange
func (s *SQLiteReportStore) GetByRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*domain.WeeklyReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM weekly_reports
		WHERE user_id = ? AND start_date = ? AND end_date = ?
	`
	report, err := scanReport(s.db.QueryRowContext(ctx, query,
		userID.String(), domain.FormatDate(start), domain.FormatDate(end)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReportNotFound
		}
		return nil, MapError(err)
	}
	return report, nil
}

// ListByUser implements store.ReportStore.ListByUser
func (s *SQLiteReportStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WeeklyReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM weekly_reports
		WHERE user_id = ?
		ORDER BY end_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var reports []*domain.WeeklyReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, MapError(err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return reports, nil
}

func scanReport(row rowScanner) (*domain.WeeklyReport, error) {
	var (
		report    domain.WeeklyReport
		id        string
		uid       string
		start     string
		end       string
		createdAt int64
	)
	err := row.Scan(&id, &uid, &report.ReportText, &start, &end, &createdAt)
	if err != nil {
		return nil, err
	}

	if report.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed report ID %q", store.ErrInvalidEntity, id)
	}
	if report.UserID, err = uuid.Parse(uid); err != nil {
		return nil, fmt.Errorf("%w: malformed user ID %q", store.ErrInvalidEntity, uid)
	}
	if report.StartDate, err = domain.ParseDate(start); err != nil {
		return nil, fmt.Errorf("%w: malformed start date %q", store.ErrInvalidEntity, start)
	}
	if report.EndDate, err = domain.ParseDate(end); err != nil {
		return nil, fmt.Errorf("%w: malformed end date %q", store.ErrInvalidEntity, end)
	}
	report.CreatedAt = fromMillis(createdAt)
	return &report, nil
}
