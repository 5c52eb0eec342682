package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/domain/streak"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// Completion rate windows, in days.
const (
	weeklyWindow  = 7
	monthlyWindow = 30
)

// ChallengeProgress summarizes a user's history against one challenge.
type ChallengeProgress struct {
	TotalCheckIns         int     `json:"total_check_ins"`
	CurrentStreak         int     `json:"current_streak"`
	WeeklyCompletionRate  float64 `json:"weekly_completion_rate"`
	MonthlyCompletionRate float64 `json:"monthly_completion_rate"`
}

// UserProgress summarizes a user's history across all challenges.
type UserProgress struct {
	TotalCheckIns        int            `json:"total_check_ins"`
	LongestCurrentStreak int            `json:"longest_current_streak"`
	CategoryCounts       map[string]int `json:"category_counts"`
}

// ProgressService records daily check-ins and computes streak statistics.
type ProgressService struct {
	progressStore  store.ProgressStore
	challengeStore store.ChallengeStore
	logger         *slog.Logger

	// now is swapped out in tests to pin streak arithmetic to a fixed day.
	now func() time.Time
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	progressStore store.ProgressStore,
	challengeStore store.ChallengeStore,
	logger *slog.Logger,
) *ProgressService {
	return &ProgressService{
		progressStore:  progressStore,
		challengeStore: challengeStore,
		logger:         logger.With(slog.String("component", "progress_service")),
		now:            time.Now,
	}
}

// CheckIn records that the user completed a challenge on the given day.
// A zero date means today. Returns ErrNotSubscribed when the user does not
// subscribe to the challenge and store.ErrAlreadyCheckedIn on repeats.
func (s *ProgressService) CheckIn(
	ctx context.Context,
	userID, challengeID uuid.UUID,
	date time.Time,
	notes string,
) (*domain.CheckIn, error) {
	subscribed, err := s.challengeStore.IsSubscribed(ctx, userID, challengeID)
	if err != nil {
		s.logger.Error("failed to check subscription",
			"error", err, "user_id", userID, "challenge_id", challengeID)
		return nil, fmt.Errorf("failed to check in: %w", err)
	}
	if !subscribed {
		return nil, ErrNotSubscribed
	}

	checkIn, err := domain.NewCheckIn(userID, challengeID, date, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to check in: %w", err)
	}

	if err := s.progressStore.Create(ctx, checkIn); err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("duplicate check-in",
				"user_id", userID,
				"challenge_id", challengeID,
				"date", domain.FormatDate(checkIn.Date))
		} else {
			s.logger.Error("failed to save check-in",
				"error", err, "user_id", userID, "challenge_id", challengeID)
		}
		return nil, fmt.Errorf("failed to check in: %w", err)
	}

	s.logger.Info("check-in recorded",
		"user_id", userID,
		"challenge_id", challengeID,
		"date", domain.FormatDate(checkIn.Date))
	return checkIn, nil
}

// UndoCheckIn removes the check-in for the given day. A zero date means
// today. Returns store.ErrCheckInNotFound if no check-in exists.
func (s *ProgressService) UndoCheckIn(ctx context.Context, userID, challengeID uuid.UUID, date time.Time) error {
	if date.IsZero() {
		date = s.now()
	}
	date = domain.NormalizeDate(date)

	if err := s.progressStore.Delete(ctx, userID, challengeID, date); err != nil {
		return fmt.Errorf("failed to undo check-in: %w", err)
	}

	s.logger.Info("check-in removed",
		"user_id", userID,
		"challenge_id", challengeID,
		"date", domain.FormatDate(date))
	return nil
}

// ListByChallenge retrieves the user's check-ins for one challenge within
// the range, newest first.
func (s *ProgressService) ListByChallenge(
	ctx context.Context,
	userID, challengeID uuid.UUID,
	r store.DateRange,
) ([]*domain.CheckIn, error) {
	if r.Start.After(r.End) && !r.End.IsZero() {
		return nil, domain.ErrInvalidDateRange
	}

	checkIns, err := s.progressStore.ListByChallenge(ctx, userID, challengeID, r)
	if err != nil {
		s.logger.Error("failed to list check-ins",
			"error", err, "user_id", userID, "challenge_id", challengeID)
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkIns, nil
}

// ListByUser retrieves all the user's check-ins within the range, with
// challenge display fields, newest first.
func (s *ProgressService) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	r store.DateRange,
) ([]*domain.CheckInDetail, error) {
	if r.Start.After(r.End) && !r.End.IsZero() {
		return nil, domain.ErrInvalidDateRange
	}

	checkIns, err := s.progressStore.ListByUser(ctx, userID, r)
	if err != nil {
		s.logger.Error("failed to list check-ins", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list check-ins: %w", err)
	}
	return checkIns, nil
}

// ChallengeStats computes the user's streak and completion rates for one
// challenge.
func (s *ProgressService) ChallengeStats(ctx context.Context, userID, challengeID uuid.UUID) (*ChallengeProgress, error) {
	dates, err := s.progressStore.Dates(ctx, userID, challengeID)
	if err != nil {
		s.logger.Error("failed to load check-in dates",
			"error", err, "user_id", userID, "challenge_id", challengeID)
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	today := s.now()
	return &ChallengeProgress{
		TotalCheckIns:         len(dates),
		CurrentStreak:         streak.Current(dates, today),
		WeeklyCompletionRate:  streak.CompletionRate(dates, weeklyWindow, today),
		MonthlyCompletionRate: streak.CompletionRate(dates, monthlyWindow, today),
	}, nil
}

// UserStats computes the user's overall totals: the number of check-ins
// across all challenges and the longest active streak among their
// subscriptions.
func (s *ProgressService) UserStats(ctx context.Context, userID uuid.UUID) (*UserProgress, error) {
	total, err := s.progressStore.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count check-ins", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	subscribed, err := s.challengeStore.ListSubscribed(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list subscriptions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to compute statistics: %w", err)
	}

	dateSets := make([][]time.Time, 0, len(subscribed))
	categories := make(map[string]struct{})
	for _, challenge := range subscribed {
		dates, err := s.progressStore.Dates(ctx, userID, challenge.ID)
		if err != nil {
			s.logger.Error("failed to load check-in dates",
				"error", err, "user_id", userID, "challenge_id", challenge.ID)
			return nil, fmt.Errorf("failed to compute statistics: %w", err)
		}
		dateSets = append(dateSets, dates)
		categories[challenge.Category] = struct{}{}
	}

	categoryCounts := make(map[string]int, len(categories))
	for category := range categories {
		count, err := s.progressStore.CountByCategory(ctx, userID, category)
		if err != nil {
			s.logger.Error("failed to count check-ins by category",
				"error", err, "user_id", userID, "category", category)
			return nil, fmt.Errorf("failed to compute statistics: %w", err)
		}
		categoryCounts[category] = count
	}

	return &UserProgress{
		TotalCheckIns:        total,
		LongestCurrentStreak: streak.Longest(dateSets, s.now()),
		CategoryCounts:       categoryCounts,
	}, nil
}
