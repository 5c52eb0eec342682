package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// ReportStore defines the interface for weekly report persistence.
type ReportStore interface {
	// Save upserts a report: a second report for the same
	// (user, start, end) range replaces the stored text.
	Save(ctx context.Context, report *domain.WeeklyReport) error

	// GetLatest retrieves the user's most recent report.
	// Returns ErrReportNotFound if the user has no reports.
	GetLatest(ctx context.Context, userID uuid.UUID) (*domain.WeeklyReport, error)

	// GetByRange retrieves the report for an exact date range.
	// Returns ErrReportNotFound if none exists.
	GetByRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*domain.WeeklyReport, error)

	// ListByUser retrieves all the user's reports, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WeeklyReport, error)

	// WithTx returns a new ReportStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReportStore
}
