package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/domain/streak"
	"github.com/yuexizhang/kindness-companion/internal/events"
	"github.com/yuexizhang/kindness-companion/internal/generation"
	"github.com/yuexizhang/kindness-companion/internal/store"
	"github.com/yuexizhang/kindness-companion/internal/task"
)

// reportTaskPayload mirrors the payload shape the report generation task
// expects.
type reportTaskPayload struct {
	UserID  string `json:"user_id"`
	EndDate string `json:"end_date"`
}

// ReportService builds weekly kindness reports. Generation runs as a
// background task; retrieval is synchronous. Users without AI consent get
// a plain statistical summary instead of LLM prose, and so does everyone
// when generation fails.
type ReportService struct {
	userStore      store.UserStore
	progressStore  store.ProgressStore
	challengeStore store.ChallengeStore
	reportStore    store.ReportStore
	generator      generation.ReportGenerator
	emitter        events.EventEmitter
	logger         *slog.Logger
}

var _ task.ReportService = (*ReportService)(nil)

// NewReportService creates a new ReportService. The generator may be nil,
// in which case every report uses the statistical fallback text.
func NewReportService(
	userStore store.UserStore,
	progressStore store.ProgressStore,
	challengeStore store.ChallengeStore,
	reportStore store.ReportStore,
	generator generation.ReportGenerator,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		userStore:      userStore,
		progressStore:  progressStore,
		challengeStore: challengeStore,
		reportStore:    reportStore,
		generator:      generator,
		emitter:        emitter,
		logger:         logger.With(slog.String("component", "report_service")),
	}
}

// RequestReport emits an event asking for a report covering the week that
// ends on endDate. The heavy lifting happens on the task runner, so API
// requests return immediately.
func (s *ReportService) RequestReport(ctx context.Context, userID uuid.UUID, endDate time.Time) error {
	event, err := events.NewTaskRequestEvent(task.TaskTypeReportGeneration, reportTaskPayload{
		UserID:  userID.String(),
		EndDate: domain.FormatDate(endDate),
	})
	if err != nil {
		return fmt.Errorf("failed to create report request event: %w", err)
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit report request",
			"error", err, "user_id", userID)
		return fmt.Errorf("failed to request report: %w", err)
	}

	s.logger.Info("report requested",
		"user_id", userID,
		"end_date", domain.FormatDate(endDate))
	return nil
}

// GenerateReport collects a week of statistics, renders the report text,
// and upserts the result. Regenerating the same week replaces the stored
// text. This is the task runner's entry point.
func (s *ReportService) GenerateReport(ctx context.Context, userID uuid.UUID, endDate time.Time) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to retrieve user for report: %w", err)
	}

	start, end := domain.WeekRange(endDate)
	stats, err := s.collectStats(ctx, user, start, end)
	if err != nil {
		return err
	}

	text := s.renderReport(ctx, user, stats)

	report, err := domain.NewWeeklyReport(userID, text, start, end)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	if err := s.reportStore.Save(ctx, report); err != nil {
		s.logger.Error("failed to save report", "error", err, "user_id", userID)
		return fmt.Errorf("failed to save report: %w", err)
	}

	s.logger.Info("weekly report generated",
		"user_id", userID,
		"start_date", domain.FormatDate(start),
		"end_date", domain.FormatDate(end),
		"check_ins", stats.TotalCheckIns)
	return nil
}

// Latest retrieves the user's most recent report.
// Returns store.ErrReportNotFound if none exists yet.
func (s *ReportService) Latest(ctx context.Context, userID uuid.UUID) (*domain.WeeklyReport, error) {
	report, err := s.reportStore.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve report: %w", err)
	}
	return report, nil
}

// ListByUser retrieves all the user's reports, newest first.
func (s *ReportService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.WeeklyReport, error) {
	reports, err := s.reportStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list reports", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) collectStats(
	ctx context.Context,
	user *domain.User,
	start, end time.Time,
) (*generation.ReportStats, error) {
	details, err := s.progressStore.ListByUser(ctx, user.ID, store.DateRange{Start: start, End: end})
	if err != nil {
		s.logger.Error("failed to load check-ins for report", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to collect report statistics: %w", err)
	}

	categoryCounts := make(map[string]int)
	for _, detail := range details {
		categoryCounts[detail.ChallengeCategory]++
	}

	subscribed, err := s.challengeStore.ListSubscribed(ctx, user.ID)
	if err != nil {
		s.logger.Error("failed to load subscriptions for report", "error", err, "user_id", user.ID)
		return nil, fmt.Errorf("failed to collect report statistics: %w", err)
	}

	dateSets := make([][]time.Time, 0, len(subscribed))
	for _, challenge := range subscribed {
		dates, err := s.progressStore.Dates(ctx, user.ID, challenge.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to collect report statistics: %w", err)
		}
		dateSets = append(dateSets, dates)
	}

	return &generation.ReportStats{
		Username:       user.Username,
		StartDate:      start,
		EndDate:        end,
		TotalCheckIns:  len(details),
		CurrentStreak:  streak.Longest(dateSets, end),
		CategoryCounts: categoryCounts,
	}, nil
}

// renderReport produces the report prose. The LLM is only consulted for
// consenting users; everyone else, and any generation failure, gets the
// statistical fallback.
func (s *ReportService) renderReport(ctx context.Context, user *domain.User, stats *generation.ReportStats) string {
	if s.generator == nil || !user.ConsentGranted() {
		return fallbackReportText(stats)
	}

	text, err := s.generator.GenerateWeeklyReport(ctx, *stats)
	if err != nil {
		s.logger.Warn("report generation failed, using fallback",
			"error", err, "user_id", user.ID)
		return fallbackReportText(stats)
	}
	return text
}

// fallbackReportText renders a plain statistical summary when LLM prose is
// unavailable.
func fallbackReportText(stats *generation.ReportStats) string {
	if stats.TotalCheckIns == 0 {
		return fmt.Sprintf("本周（%s 至 %s）还没有打卡记录。新的一周，从一件小小的善行开始吧！",
			domain.FormatDate(stats.StartDate), domain.FormatDate(stats.EndDate))
	}

	return fmt.Sprintf("本周（%s 至 %s）你一共完成了 %d 次善行打卡，当前最长连续打卡 %d 天。继续保持，让善意成为习惯！",
		domain.FormatDate(stats.StartDate),
		domain.FormatDate(stats.EndDate),
		stats.TotalCheckIns,
		stats.CurrentStreak)
}
