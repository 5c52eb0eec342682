package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// recordingScheduler captures scheduler calls instead of running cron.
type recordingScheduler struct {
	mu          sync.Mutex
	scheduled   []*domain.ReminderDetail
	unscheduled []uuid.UUID
	err         error
}

func (s *recordingScheduler) Schedule(reminder *domain.ReminderDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.scheduled = append(s.scheduled, reminder)
	return nil
}

func (s *recordingScheduler) Unschedule(reminderID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unscheduled = append(s.unscheduled, reminderID)
}

var _ ReminderScheduler = (*recordingScheduler)(nil)

type reminderFixture struct {
	stores    *testStores
	scheduler *recordingScheduler
	svc       *ReminderService
	user      *domain.User
	challenge *domain.Challenge
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()

	s := newTestStores(t)
	sched := &recordingScheduler{}
	return &reminderFixture{
		stores:    s,
		scheduler: sched,
		svc:       NewReminderService(s.reminders, sched, testLogger()),
		user:      createTestUser(t, s, "reminded"),
		challenge: createTestChallenge(t, s, "提醒挑战"),
	}
}

func TestCreateReminder(t *testing.T) {
	t.Parallel()

	f := newReminderFixture(t)

	detail, err := f.svc.Create(context.Background(), f.user.ID, f.challenge.ID, "08:30", domain.EveryDay)
	require.NoError(t, err)
	assert.Equal(t, "08:30", detail.TimeOfDay)
	assert.Equal(t, f.challenge.Title, detail.ChallengeTitle)
	assert.True(t, detail.Enabled)

	require.Len(t, f.scheduler.scheduled, 1)
	assert.Equal(t, detail.ID, f.scheduler.scheduled[0].ID)
}

func TestCreateReminderInvalidTime(t *testing.T) {
	t.Parallel()

	f := newReminderFixture(t)

	_, err := f.svc.Create(context.Background(), f.user.ID, f.challenge.ID, "24:61", domain.EveryDay)
	assert.ErrorIs(t, err, domain.ErrInvalidTime)
	assert.Empty(t, f.scheduler.scheduled)
}

func TestUpdateReminder(t *testing.T) {
	t.Parallel()

	f := newReminderFixture(t)
	ctx := context.Background()

	detail, err := f.svc.Create(ctx, f.user.ID, f.challenge.ID, "08:30", domain.EveryDay)
	require.NoError(t, err)

	newTime := "21:00"
	days, err := domain.WeekdaysFromList([]int{0, 2})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, f.user.ID, detail.ID, ReminderUpdate{
		TimeOfDay: &newTime,
		Days:      &days,
	})
	require.NoError(t, err)
	assert.Equal(t, newTime, updated.TimeOfDay)
	assert.Equal(t, days, updated.Days)

	reloaded, err := f.stores.reminders.GetByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, newTime, reloaded.TimeOfDay)

	// Create and update both went through the scheduler.
	assert.Len(t, f.scheduler.scheduled, 2)
}

func TestUpdateReminderNotOwned(t *testing.T) {
	t.Parallel()

	f := newReminderFixture(t)
	ctx := context.Background()

	detail, err := f.svc.Create(ctx, f.user.ID, f.challenge.ID, "08:30", domain.EveryDay)
	require.NoError(t, err)

	stranger := createTestUser(t, f.stores, "stranger")
	enabled := false
	_, err = f.svc.Update(ctx, stranger.ID, detail.ID, ReminderUpdate{Enabled: &enabled})
	assert.ErrorIs(t, err, ErrNotOwned)
}

func TestDeleteReminder(t *testing.T) {
	t.Parallel()

	f := newReminderFixture(t)
	ctx := context.Background()

	detail, err := f.svc.Create(ctx, f.user.ID, f.challenge.ID, "08:30", domain.EveryDay)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.user.ID, detail.ID))
	assert.Contains(t, f.scheduler.unscheduled, detail.ID)

	_, err = f.stores.reminders.GetByID(ctx, detail.ID)
	assert.ErrorIs(t, err, store.ErrReminderNotFound)
}

func TestListReminders(t *testing.T) {
	t.Parallel()

	f := newReminderFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.user.ID, f.challenge.ID, "20:00", domain.EveryDay)
	require.NoError(t, err)
	second := createTestChallenge(t, f.stores, "第二个提醒挑战")
	_, err = f.svc.Create(ctx, f.user.ID, second.ID, "08:00", domain.EveryDay)
	require.NoError(t, err)

	reminders, err := f.svc.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	// Ordered by time of day.
	assert.Equal(t, "08:00", reminders[0].TimeOfDay)
	assert.Equal(t, "20:00", reminders[1].TimeOfDay)
}
