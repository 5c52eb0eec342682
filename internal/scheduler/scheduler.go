package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// ReminderHandler receives a reminder when its scheduled time arrives.
// Implementations must not block for long; delivery runs on the cron
// goroutine.
type ReminderHandler interface {
	HandleReminder(ctx context.Context, reminder *domain.ReminderDetail)
}

// ReminderHandlerFunc adapts a function to the ReminderHandler interface.
type ReminderHandlerFunc func(ctx context.Context, reminder *domain.ReminderDetail)

// HandleReminder implements ReminderHandler.
func (f ReminderHandlerFunc) HandleReminder(ctx context.Context, reminder *domain.ReminderDetail) {
	f(ctx, reminder)
}

// LoggingReminderHandler writes each due reminder to the log. It stands in
// for a desktop notification surface when no richer delivery channel is
// wired up.
type LoggingReminderHandler struct {
	logger *slog.Logger
}

// NewLoggingReminderHandler creates a handler that logs due reminders.
func NewLoggingReminderHandler(logger *slog.Logger) *LoggingReminderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingReminderHandler{logger: logger.With(slog.String("component", "reminder_handler"))}
}

var _ ReminderHandler = (*LoggingReminderHandler)(nil)

// HandleReminder implements ReminderHandler.
func (h *LoggingReminderHandler) HandleReminder(_ context.Context, reminder *domain.ReminderDetail) {
	h.logger.Info("reminder due",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("user_id", reminder.UserID.String()),
		slog.String("challenge_title", reminder.ChallengeTitle),
		slog.String("time_of_day", reminder.TimeOfDay))
}

// ReminderScheduler keeps one cron entry per enabled reminder and fires the
// configured handler when an entry triggers.
type ReminderScheduler struct {
	cron    *cron.Cron
	store   store.ReminderStore
	handler ReminderHandler
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[uuid.UUID]cron.EntryID
}

// NewReminderScheduler creates a scheduler backed by the given reminder
// store. The handler receives each due reminder.
func NewReminderScheduler(reminderStore store.ReminderStore, handler ReminderHandler, logger *slog.Logger) *ReminderScheduler {
	if reminderStore == nil {
		panic("reminder store cannot be nil")
	}
	if handler == nil {
		panic("reminder handler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ReminderScheduler{
		cron:    cron.New(),
		store:   reminderStore,
		handler: handler,
		logger:  logger.With(slog.String("component", "reminder_scheduler")),
		entries: make(map[uuid.UUID]cron.EntryID),
	}
}

// Start loads every enabled reminder from the store and begins firing them.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	reminders, err := s.store.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load enabled reminders: %w", err)
	}

	for _, reminder := range reminders {
		if err := s.Schedule(reminder); err != nil {
			s.logger.Warn("skipping reminder with invalid schedule",
				slog.String("reminder_id", reminder.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	s.cron.Start()
	s.logger.Info("reminder scheduler started", slog.Int("reminder_count", len(s.entries)))
	return nil
}

// Stop halts the cron runner and waits for in-flight deliveries to finish.
func (s *ReminderScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("reminder scheduler stopped")
}

// Schedule registers or replaces the cron entry for a reminder. Disabled
// reminders are unscheduled instead.
func (s *ReminderScheduler) Schedule(reminder *domain.ReminderDetail) error {
	if !reminder.Enabled {
		s.Unschedule(reminder.ID)
		return nil
	}

	spec, err := cronSpec(&reminder.Reminder)
	if err != nil {
		return err
	}

	// Copy so later mutations by the caller do not leak into the closure.
	due := *reminder
	entryID, err := s.cron.AddFunc(spec, func() {
		s.handler.HandleReminder(context.Background(), &due)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron entry: %w", err)
	}

	s.mu.Lock()
	if old, ok := s.entries[reminder.ID]; ok {
		s.cron.Remove(old)
	}
	s.entries[reminder.ID] = entryID
	s.mu.Unlock()

	s.logger.Debug("reminder scheduled",
		slog.String("reminder_id", reminder.ID.String()),
		slog.String("cron_spec", spec))
	return nil
}

// Unschedule removes the cron entry for a reminder if one exists.
func (s *ReminderScheduler) Unschedule(reminderID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.entries[reminderID]
	if !ok {
		return
	}
	s.cron.Remove(entryID)
	delete(s.entries, reminderID)

	s.logger.Debug("reminder unscheduled", slog.String("reminder_id", reminderID.String()))
}

// Scheduled reports whether a reminder currently has a cron entry.
func (s *ReminderScheduler) Scheduled(reminderID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[reminderID]
	return ok
}

// cronSpec renders a reminder as a standard five-field cron expression.
// Reminder weekdays use 0=Monday while cron uses 0=Sunday, so each day
// shifts by one.
func cronSpec(reminder *domain.Reminder) (string, error) {
	hour, minute, err := reminder.Clock()
	if err != nil {
		return "", err
	}

	days := reminder.Days.List()
	if len(days) == 0 {
		return "", domain.ErrNoDaysSelected
	}

	cronDays := make([]string, 0, len(days))
	for _, day := range days {
		cronDays = append(cronDays, strconv.Itoa((day+1)%7))
	}

	return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(cronDays, ",")), nil
}
