package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/events"
	"github.com/yuexizhang/kindness-companion/internal/generation"
	"github.com/yuexizhang/kindness-companion/internal/store"
	"github.com/yuexizhang/kindness-companion/internal/task"
)

// stubReportGenerator returns fixed prose and records the stats it saw.
type stubReportGenerator struct {
	mu        sync.Mutex
	text      string
	err       error
	calls     int
	lastStats generation.ReportStats
}

func (g *stubReportGenerator) GenerateWeeklyReport(_ context.Context, stats generation.ReportStats) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastStats = stats
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

// recordingEmitter captures emitted events.
type recordingEmitter struct {
	mu     sync.Mutex
	events []*events.TaskRequestEvent
	err    error
}

func (e *recordingEmitter) EmitEvent(_ context.Context, event *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.events = append(e.events, event)
	return nil
}

type reportFixture struct {
	stores    *testStores
	generator *stubReportGenerator
	emitter   *recordingEmitter
	svc       *ReportService
	user      *domain.User
	challenge *domain.Challenge
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()

	s := newTestStores(t)
	gen := &stubReportGenerator{text: "这是一份温暖的周报。"}
	emitter := &recordingEmitter{}

	f := &reportFixture{
		stores:    s,
		generator: gen,
		emitter:   emitter,
		svc: NewReportService(
			s.users, s.progress, s.challenges, s.reports, gen, emitter, testLogger()),
		user:      createTestUser(t, s, "reporter"),
		challenge: createTestChallenge(t, s, "周报挑战"),
	}
	require.NoError(t, s.challenges.Subscribe(context.Background(), f.user.ID, f.challenge.ID))
	return f
}

func (f *reportFixture) checkIn(t *testing.T, daysAgo int) {
	t.Helper()

	checkIn, err := domain.NewCheckIn(f.user.ID, f.challenge.ID, time.Now().AddDate(0, 0, -daysAgo), "")
	require.NoError(t, err)
	require.NoError(t, f.stores.progress.Create(context.Background(), checkIn))
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()

	f := newReportFixture(t)
	ctx := context.Background()
	grantConsent(t, f.stores, f.user.ID)

	f.checkIn(t, 0)
	f.checkIn(t, 1)
	f.checkIn(t, 2)

	require.NoError(t, f.svc.GenerateReport(ctx, f.user.ID, time.Now()))

	report, err := f.svc.Latest(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "这是一份温暖的周报。", report.ReportText)

	start, end := domain.WeekRange(time.Now())
	assert.Equal(t, start, report.StartDate)
	assert.Equal(t, end, report.EndDate)

	assert.Equal(t, 1, f.generator.calls)
	assert.Equal(t, "reporter", f.generator.lastStats.Username)
	assert.Equal(t, 3, f.generator.lastStats.TotalCheckIns)
	assert.Equal(t, 3, f.generator.lastStats.CurrentStreak)
	assert.Equal(t, 3, f.generator.lastStats.CategoryCounts["日常"])
}

func TestGenerateReportReplacesSameWeek(t *testing.T) {
	t.Parallel()

	f := newReportFixture(t)
	ctx := context.Background()
	grantConsent(t, f.stores, f.user.ID)

	require.NoError(t, f.svc.GenerateReport(ctx, f.user.ID, time.Now()))

	f.generator.text = "更新后的周报。"
	require.NoError(t, f.svc.GenerateReport(ctx, f.user.ID, time.Now()))

	reports, err := f.svc.ListByUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, reports, 1, "regenerating the same week must replace, not append")
	assert.Equal(t, "更新后的周报。", reports[0].ReportText)
}

func TestGenerateReportFallbackWithoutConsent(t *testing.T) {
	t.Parallel()

	f := newReportFixture(t)
	ctx := context.Background()

	f.checkIn(t, 0)

	require.NoError(t, f.svc.GenerateReport(ctx, f.user.ID, time.Now()))
	assert.Equal(t, 0, f.generator.calls, "the LLM must not run for non-consenting users")

	report, err := f.svc.Latest(ctx, f.user.ID)
	require.NoError(t, err)
	assert.True(t, strings.Contains(report.ReportText, "1 次"), report.ReportText)
}

func TestGenerateReportFallbackOnFailure(t *testing.T) {
	t.Parallel()

	f := newReportFixture(t)
	ctx := context.Background()
	grantConsent(t, f.stores, f.user.ID)
	f.generator.err = errors.New("provider down")

	require.NoError(t, f.svc.GenerateReport(ctx, f.user.ID, time.Now()),
		"generation failures must fall back, not fail the task")

	report, err := f.svc.Latest(ctx, f.user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, report.ReportText)
}

func TestRequestReportEmitsEvent(t *testing.T) {
	t.Parallel()

	f := newReportFixture(t)
	ctx := context.Background()

	endDate := time.Now()
	require.NoError(t, f.svc.RequestReport(ctx, f.user.ID, endDate))

	require.Len(t, f.emitter.events, 1)
	event := f.emitter.events[0]
	assert.Equal(t, task.TaskTypeReportGeneration, event.Type)

	var payload reportTaskPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, f.user.ID.String(), payload.UserID)
	assert.Equal(t, domain.FormatDate(endDate), payload.EndDate)
}

func TestLatestWithoutReports(t *testing.T) {
	t.Parallel()

	f := newReportFixture(t)

	_, err := f.svc.Latest(context.Background(), f.user.ID)
	assert.ErrorIs(t, err, store.ErrReportNotFound)
}
