package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// ReportGenerationTaskFactory creates ReportGenerationTask instances and
// rehydrates persisted ones during recovery.
type ReportGenerationTaskFactory struct {
	reportService ReportService
	logger        *slog.Logger
}

// NewReportGenerationTaskFactory creates a factory for report generation
// tasks.
func NewReportGenerationTaskFactory(
	reportService ReportService,
	logger *slog.Logger,
) *ReportGenerationTaskFactory {
	return &ReportGenerationTaskFactory{
		reportService: reportService,
		logger:        logger.With("component", "report_task_factory"),
	}
}

var _ ExecutorResolver = (*ReportGenerationTaskFactory)(nil)

// CreateTask builds a new report generation task for the given user and
// week end date.
func (f *ReportGenerationTaskFactory) CreateTask(userID uuid.UUID, endDate time.Time) (Task, error) {
	return NewReportGenerationTask(userID, endDate, f.reportService, f.logger)
}

// ResolveExecutor implements ExecutorResolver for tasks loaded from the
// database, binding the stored payload back to the live report service.
func (f *ReportGenerationTaskFactory) ResolveExecutor(
	taskType string,
	payload []byte,
) (func(ctx context.Context) error, error) {
	if taskType != TaskTypeReportGeneration {
		return nil, fmt.Errorf("unknown task type %q", taskType)
	}

	userID, endDate, err := parseReportPayload(payload)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		return f.reportService.GenerateReport(ctx, userID, endDate)
	}, nil
}

func parseReportPayload(payload []byte) (uuid.UUID, time.Time, error) {
	var decoded reportGenerationPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("malformed report task payload: %w", err)
	}

	userID, err := uuid.Parse(decoded.UserID)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("malformed user ID in task payload: %w", err)
	}

	endDate, err := domain.ParseDate(decoded.EndDate)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("malformed end date in task payload: %w", err)
	}

	return userID, endDate, nil
}
