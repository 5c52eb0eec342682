package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// Common errors
var (
	ErrNilReportService = errors.New("report service cannot be nil")
	ErrNilLogger        = errors.New("logger cannot be nil")
	ErrEmptyTaskUserID  = errors.New("user ID cannot be empty")
)

// ReportService defines the report operations the task needs. The service
// layer implements it; keeping the interface here avoids an import cycle.
type ReportService interface {
	// GenerateReport collects the user's stats for the week ending on
	// endDate, produces the report text, and saves it.
	GenerateReport(ctx context.Context, userID uuid.UUID, endDate time.Time) error
}

// reportGenerationPayload is the serialized task data.
type reportGenerationPayload struct {
	UserID  string `json:"user_id"`
	EndDate string `json:"end_date"`
}

// ReportGenerationTask implements the Task interface for generating a
// user's weekly report in the background.
type ReportGenerationTask struct {
	id            uuid.UUID
	userID        uuid.UUID
	endDate       time.Time
	reportService ReportService
	logger        *slog.Logger
	status        TaskStatus
}

var _ Task = (*ReportGenerationTask)(nil)

// NewReportGenerationTask creates a report generation task for the week
// ending on endDate.
func NewReportGenerationTask(
	userID uuid.UUID,
	endDate time.Time,
	reportService ReportService,
	logger *slog.Logger,
) (*ReportGenerationTask, error) {
	if reportService == nil {
		return nil, ErrNilReportService
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyTaskUserID
	}

	return &ReportGenerationTask{
		id:            uuid.New(),
		userID:        userID,
		endDate:       domain.NormalizeDate(endDate),
		reportService: reportService,
		logger:        logger.With("task_type", TaskTypeReportGeneration, "user_id", userID),
		status:        TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *ReportGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *ReportGenerationTask) Type() string {
	return TaskTypeReportGeneration
}

// Payload returns the task data as a byte slice
func (t *ReportGenerationTask) Payload() []byte {
	data, err := json.Marshal(reportGenerationPayload{
		UserID:  t.userID.String(),
		EndDate: domain.FormatDate(t.endDate),
	})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

// Status returns the current task status
func (t *ReportGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute generates and saves the weekly report.
func (t *ReportGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting report generation task",
		"end_date", domain.FormatDate(t.endDate))

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	if err := t.reportService.GenerateReport(ctx, t.userID, t.endDate); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to generate report", "error", err)
		return fmt.Errorf("failed to generate report: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("report generation task completed")
	return nil
}
