package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// ReminderScheduler is the slice of the cron scheduler the reminder
// service drives: keeping entries in step with reminder writes.
type ReminderScheduler interface {
	Schedule(reminder *domain.ReminderDetail) error
	Unschedule(reminderID uuid.UUID)
}

// ReminderUpdate holds the mutable fields of a reminder update request.
// Nil pointers leave the stored value untouched.
type ReminderUpdate struct {
	TimeOfDay *string
	Days      *domain.Weekdays
	Enabled   *bool
}

// ReminderService manages reminders and keeps the cron scheduler in sync
// with every create, update, and delete.
type ReminderService struct {
	reminderStore store.ReminderStore
	scheduler     ReminderScheduler
	logger        *slog.Logger
}

// NewReminderService creates a new ReminderService.
func NewReminderService(
	reminderStore store.ReminderStore,
	scheduler ReminderScheduler,
	logger *slog.Logger,
) *ReminderService {
	return &ReminderService{
		reminderStore: reminderStore,
		scheduler:     scheduler,
		logger:        logger.With(slog.String("component", "reminder_service")),
	}
}

// Create adds an enabled reminder and schedules it. A zero days bitset
// defaults to every day. Returns store.ErrInvalidEntity when the challenge
// does not exist.
func (s *ReminderService) Create(
	ctx context.Context,
	userID, challengeID uuid.UUID,
	timeOfDay string,
	days domain.Weekdays,
) (*domain.ReminderDetail, error) {
	reminder, err := domain.NewReminder(userID, challengeID, timeOfDay, days)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	if err := s.reminderStore.Create(ctx, reminder); err != nil {
		s.logger.Error("failed to save reminder",
			"error", err, "user_id", userID, "challenge_id", challengeID)
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	// Reload to pick up the joined challenge title for the scheduler's
	// delivery message.
	detail, err := s.reminderStore.GetByID(ctx, reminder.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created reminder: %w", err)
	}

	if err := s.scheduler.Schedule(detail); err != nil {
		s.logger.Error("failed to schedule reminder",
			"error", err, "reminder_id", reminder.ID)
		return nil, fmt.Errorf("failed to schedule reminder: %w", err)
	}

	s.logger.Info("reminder created",
		"reminder_id", reminder.ID,
		"user_id", userID,
		"time_of_day", timeOfDay)
	return detail, nil
}

// Update applies the non-nil fields of the update and reschedules the
// reminder. Disabling a reminder removes its cron entry. Returns
// ErrNotOwned when the reminder belongs to another user.
func (s *ReminderService) Update(
	ctx context.Context,
	userID, reminderID uuid.UUID,
	update ReminderUpdate,
) (*domain.ReminderDetail, error) {
	detail, err := s.getOwned(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}

	if update.TimeOfDay != nil {
		detail.TimeOfDay = *update.TimeOfDay
	}
	if update.Days != nil {
		detail.Days = *update.Days
	}
	if update.Enabled != nil {
		detail.Enabled = *update.Enabled
	}

	if err := detail.Validate(); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	if err := s.reminderStore.Update(ctx, &detail.Reminder); err != nil {
		s.logger.Error("failed to update reminder", "error", err, "reminder_id", reminderID)
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	if err := s.scheduler.Schedule(detail); err != nil {
		s.logger.Error("failed to reschedule reminder",
			"error", err, "reminder_id", reminderID)
		return nil, fmt.Errorf("failed to reschedule reminder: %w", err)
	}

	s.logger.Info("reminder updated", "reminder_id", reminderID, "enabled", detail.Enabled)
	return detail, nil
}

// Delete removes a reminder and its cron entry. Returns ErrNotOwned when
// the reminder belongs to another user.
func (s *ReminderService) Delete(ctx context.Context, userID, reminderID uuid.UUID) error {
	if _, err := s.getOwned(ctx, userID, reminderID); err != nil {
		return err
	}

	if err := s.reminderStore.Delete(ctx, reminderID); err != nil {
		s.logger.Error("failed to delete reminder", "error", err, "reminder_id", reminderID)
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	s.scheduler.Unschedule(reminderID)

	s.logger.Info("reminder deleted", "reminder_id", reminderID, "user_id", userID)
	return nil
}

// ListByUser retrieves the user's reminders ordered by time of day.
func (s *ReminderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReminderDetail, error) {
	reminders, err := s.reminderStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list reminders", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (s *ReminderService) getOwned(ctx context.Context, userID, reminderID uuid.UUID) (*domain.ReminderDetail, error) {
	detail, err := s.reminderStore.GetByID(ctx, reminderID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reminder: %w", err)
	}
	if detail.UserID != userID {
		s.logger.Warn("reminder access by non-owner",
			"reminder_id", reminderID,
			"owner_id", detail.UserID,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return detail, nil
}
