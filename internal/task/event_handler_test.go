package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/events"
)

type stubCreator struct {
	created Task
	err     error

	gotUserID  uuid.UUID
	gotEndDate time.Time
}

func (c *stubCreator) CreateTask(userID uuid.UUID, endDate time.Time) (Task, error) {
	c.gotUserID = userID
	c.gotEndDate = endDate
	if c.err != nil {
		return nil, c.err
	}
	return c.created, nil
}

type stubSubmitter struct {
	submitted []Task
	err       error
}

func (s *stubSubmitter) Submit(ctx context.Context, t Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, t)
	return nil
}

func TestHandleEventCreatesAndSubmitsTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	creator := &stubCreator{created: newFakeTask(nil)}
	submitter := &stubSubmitter{}
	handler := NewTaskFactoryEventHandler(creator, submitter, testLogger())

	event, err := events.NewTaskRequestEvent(TaskTypeReportGeneration, reportGenerationPayload{
		UserID:  userID.String(),
		EndDate: "2026-03-01",
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Equal(t, userID, creator.gotUserID)
	assert.Equal(t, "2026-03-01", creator.gotEndDate.Format("2006-01-02"))
	assert.Len(t, submitter.submitted, 1)
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	t.Parallel()

	creator := &stubCreator{created: newFakeTask(nil)}
	submitter := &stubSubmitter{}
	handler := NewTaskFactoryEventHandler(creator, submitter, testLogger())

	event, err := events.NewTaskRequestEvent("something_else", nil)
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Empty(t, submitter.submitted)
}

func TestHandleEventRejectsMalformedPayload(t *testing.T) {
	t.Parallel()

	handler := NewTaskFactoryEventHandler(&stubCreator{}, &stubSubmitter{}, testLogger())

	event, err := events.NewTaskRequestEvent(TaskTypeReportGeneration, reportGenerationPayload{
		UserID:  "not-a-uuid",
		EndDate: "2026-03-01",
	})
	require.NoError(t, err)

	assert.Error(t, handler.HandleEvent(context.Background(), event))
}

func TestHandleEventPropagatesSubmitError(t *testing.T) {
	t.Parallel()

	creator := &stubCreator{created: newFakeTask(nil)}
	submitter := &stubSubmitter{err: errors.New("queue full")}
	handler := NewTaskFactoryEventHandler(creator, submitter, testLogger())

	event, err := events.NewTaskRequestEvent(TaskTypeReportGeneration, reportGenerationPayload{
		UserID:  uuid.New().String(),
		EndDate: "2026-03-01",
	})
	require.NoError(t, err)

	err = handler.HandleEvent(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to submit task")
}
