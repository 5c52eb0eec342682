package scheduler

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubReminderStore struct {
	store.ReminderStore

	enabled []*domain.ReminderDetail
	err     error
}

func (s *stubReminderStore) ListEnabled(_ context.Context) ([]*domain.ReminderDetail, error) {
	return s.enabled, s.err
}

func (s *stubReminderStore) WithTx(_ *sql.Tx) store.ReminderStore { return s }

func newTestReminder(t *testing.T, timeOfDay string, days domain.Weekdays) *domain.ReminderDetail {
	t.Helper()

	reminder, err := domain.NewReminder(uuid.New(), uuid.New(), timeOfDay, days)
	require.NoError(t, err)
	return &domain.ReminderDetail{Reminder: *reminder, ChallengeTitle: "每日微笑"}
}

func TestCronSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		timeOfDay string
		days      []int
		want      string
	}{
		{
			name:      "single weekday shifts monday to cron 1",
			timeOfDay: "08:30",
			days:      []int{0},
			want:      "30 8 * * 1",
		},
		{
			name:      "sunday wraps to cron 0",
			timeOfDay: "21:05",
			days:      []int{6},
			want:      "5 21 * * 0",
		},
		{
			name:      "multiple days keep ascending order",
			timeOfDay: "12:00",
			days:      []int{0, 2, 4},
			want:      "0 12 * * 1,3,5",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			days, err := domain.WeekdaysFromList(tc.days)
			require.NoError(t, err)

			reminder, err := domain.NewReminder(uuid.New(), uuid.New(), tc.timeOfDay, days)
			require.NoError(t, err)

			spec, err := cronSpec(reminder)
			require.NoError(t, err)
			assert.Equal(t, tc.want, spec)
		})
	}
}

func TestCronSpecRejectsInvalidTime(t *testing.T) {
	t.Parallel()

	reminder := &domain.Reminder{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		ChallengeID: uuid.New(),
		TimeOfDay:   "25:99",
		Days:        domain.EveryDay,
	}

	_, err := cronSpec(reminder)
	assert.ErrorIs(t, err, domain.ErrInvalidTime)
}

func TestScheduleAndUnschedule(t *testing.T) {
	t.Parallel()

	sched := NewReminderScheduler(&stubReminderStore{}, NewLoggingReminderHandler(testLogger()), testLogger())
	reminder := newTestReminder(t, "09:00", domain.EveryDay)

	require.NoError(t, sched.Schedule(reminder))
	assert.True(t, sched.Scheduled(reminder.ID))

	sched.Unschedule(reminder.ID)
	assert.False(t, sched.Scheduled(reminder.ID))
}

func TestScheduleReplacesExistingEntry(t *testing.T) {
	t.Parallel()

	sched := NewReminderScheduler(&stubReminderStore{}, NewLoggingReminderHandler(testLogger()), testLogger())
	reminder := newTestReminder(t, "09:00", domain.EveryDay)

	require.NoError(t, sched.Schedule(reminder))
	reminder.TimeOfDay = "10:15"
	require.NoError(t, sched.Schedule(reminder))

	assert.True(t, sched.Scheduled(reminder.ID))
	sched.mu.Lock()
	assert.Len(t, sched.entries, 1)
	sched.mu.Unlock()
}

func TestScheduleDisabledReminderUnschedules(t *testing.T) {
	t.Parallel()

	sched := NewReminderScheduler(&stubReminderStore{}, NewLoggingReminderHandler(testLogger()), testLogger())
	reminder := newTestReminder(t, "09:00", domain.EveryDay)

	require.NoError(t, sched.Schedule(reminder))
	require.True(t, sched.Scheduled(reminder.ID))

	reminder.Enabled = false
	require.NoError(t, sched.Schedule(reminder))
	assert.False(t, sched.Scheduled(reminder.ID))
}

func TestStartLoadsEnabledReminders(t *testing.T) {
	t.Parallel()

	first := newTestReminder(t, "08:00", domain.EveryDay)
	second := newTestReminder(t, "20:30", domain.EveryDay)
	reminderStore := &stubReminderStore{enabled: []*domain.ReminderDetail{first, second}}

	sched := NewReminderScheduler(reminderStore, NewLoggingReminderHandler(testLogger()), testLogger())
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	assert.True(t, sched.Scheduled(first.ID))
	assert.True(t, sched.Scheduled(second.ID))
}

func TestStartSkipsInvalidReminder(t *testing.T) {
	t.Parallel()

	valid := newTestReminder(t, "08:00", domain.EveryDay)
	invalid := newTestReminder(t, "08:00", domain.EveryDay)
	invalid.TimeOfDay = "not-a-time"
	reminderStore := &stubReminderStore{enabled: []*domain.ReminderDetail{valid, invalid}}

	sched := NewReminderScheduler(reminderStore, NewLoggingReminderHandler(testLogger()), testLogger())
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	assert.True(t, sched.Scheduled(valid.ID))
	assert.False(t, sched.Scheduled(invalid.ID))
}
