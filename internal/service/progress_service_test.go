package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// progressFixture is a user subscribed to one challenge.
type progressFixture struct {
	stores    *testStores
	svc       *ProgressService
	user      *domain.User
	challenge *domain.Challenge
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()

	s := newTestStores(t)
	user := createTestUser(t, s, "checker")
	challenge := createTestChallenge(t, s, "打卡挑战")
	require.NoError(t, s.challenges.Subscribe(context.Background(), user.ID, challenge.ID))

	return &progressFixture{
		stores:    s,
		svc:       NewProgressService(s.progress, s.challenges, testLogger()),
		user:      user,
		challenge: challenge,
	}
}

func TestCheckIn(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)
	ctx := context.Background()

	checkIn, err := f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, time.Time{}, "今天帮邻居拿了快递")
	require.NoError(t, err)
	assert.Equal(t, domain.NormalizeDate(time.Now()), checkIn.Date)

	// Checking in twice the same day conflicts.
	_, err = f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, time.Time{}, "")
	assert.ErrorIs(t, err, store.ErrAlreadyCheckedIn)
}

func TestCheckInRequiresSubscription(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)
	other := createTestChallenge(t, f.stores, "未订阅挑战")

	_, err := f.svc.CheckIn(context.Background(), f.user.ID, other.ID, time.Time{}, "")
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestCheckInRejectsFutureDate(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)

	_, err := f.svc.CheckIn(context.Background(), f.user.ID, f.challenge.ID,
		time.Now().AddDate(0, 0, 2), "")
	assert.ErrorIs(t, err, domain.ErrFutureCheckIn)
}

func TestUndoCheckIn(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, time.Time{}, "")
	require.NoError(t, err)

	require.NoError(t, f.svc.UndoCheckIn(ctx, f.user.ID, f.challenge.ID, time.Time{}))

	// A second undo finds nothing.
	err = f.svc.UndoCheckIn(ctx, f.user.ID, f.challenge.ID, time.Time{})
	assert.ErrorIs(t, err, store.ErrCheckInNotFound)
}

func TestListByUser(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)
	ctx := context.Background()

	yesterday := time.Now().AddDate(0, 0, -1)
	_, err := f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, yesterday, "")
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, time.Time{}, "")
	require.NoError(t, err)

	details, err := f.svc.ListByUser(ctx, f.user.ID, store.DateRange{})
	require.NoError(t, err)
	require.Len(t, details, 2)
	// Newest first, joined with challenge display fields.
	assert.Equal(t, domain.NormalizeDate(time.Now()), details[0].Date)
	assert.Equal(t, f.challenge.Title, details[0].ChallengeTitle)

	// A range bounded to yesterday excludes today.
	bounded, err := f.svc.ListByUser(ctx, f.user.ID, store.DateRange{
		Start: yesterday.AddDate(0, 0, -1),
		End:   yesterday,
	})
	require.NoError(t, err)
	assert.Len(t, bounded, 1)
}

func TestChallengeStats(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)
	ctx := context.Background()

	// Three consecutive days ending today.
	for offset := 2; offset >= 0; offset-- {
		_, err := f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID,
			time.Now().AddDate(0, 0, -offset), "")
		require.NoError(t, err)
	}

	stats, err := f.svc.ChallengeStats(ctx, f.user.ID, f.challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCheckIns)
	assert.Equal(t, 3, stats.CurrentStreak)
	assert.InDelta(t, 3.0/7.0, stats.WeeklyCompletionRate, 1e-9)
	assert.InDelta(t, 3.0/30.0, stats.MonthlyCompletionRate, 1e-9)
}

func TestChallengeStatsBrokenStreak(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)
	ctx := context.Background()

	// A single check-in three days ago is a dead streak.
	_, err := f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, time.Now().AddDate(0, 0, -3), "")
	require.NoError(t, err)

	stats, err := f.svc.ChallengeStats(ctx, f.user.ID, f.challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalCheckIns)
	assert.Equal(t, 0, stats.CurrentStreak)
}

func TestUserStats(t *testing.T) {
	t.Parallel()

	f := newProgressFixture(t)
	ctx := context.Background()

	second := createTestChallenge(t, f.stores, "第二个挑战")
	require.NoError(t, f.stores.challenges.Subscribe(ctx, f.user.ID, second.ID))

	// Two-day streak on the first challenge, one-day on the second.
	_, err := f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, time.Now().AddDate(0, 0, -1), "")
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.user.ID, f.challenge.ID, time.Time{}, "")
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, f.user.ID, second.ID, time.Time{}, "")
	require.NoError(t, err)

	stats, err := f.svc.UserStats(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCheckIns)
	assert.Equal(t, 2, stats.LongestCurrentStreak)
	// Both test challenges share the 日常 category.
	assert.Equal(t, map[string]int{"日常": 3}, stats.CategoryCounts)
}

func TestUserStatsEmpty(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	svc := NewProgressService(s.progress, s.challenges, testLogger())

	stats, err := svc.UserStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCheckIns)
	assert.Equal(t, 0, stats.LongestCurrentStreak)
}
