package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/events"
)

// taskCreator abstracts the factory for testing.
type taskCreator interface {
	CreateTask(userID uuid.UUID, endDate time.Time) (Task, error)
}

// taskSubmitter abstracts the runner for testing.
type taskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler turns task request events into persisted,
// queued tasks.
type TaskFactoryEventHandler struct {
	factory   taskCreator
	submitter taskSubmitter
	logger    *slog.Logger
}

// NewTaskFactoryEventHandler creates an event handler that builds tasks
// with the given factory and submits them to the runner.
func NewTaskFactoryEventHandler(
	factory taskCreator,
	submitter taskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "task_event_handler"),
	}
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)

// HandleEvent processes report generation requests. Events of other types
// are ignored so additional handlers can coexist on the same emitter.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != TaskTypeReportGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload reportGenerationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		h.logger.Error("invalid user ID in event payload",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("invalid user ID: %w", err)
	}

	endDate, err := domain.ParseDate(payload.EndDate)
	if err != nil {
		h.logger.Error("invalid end date in event payload",
			"error", err,
			"event_id", event.ID)
		return fmt.Errorf("invalid end date: %w", err)
	}

	t, err := h.factory.CreateTask(userID, endDate)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"user_id", userID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, t); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", t.ID(),
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted",
		"task_id", t.ID(),
		"user_id", userID,
		"event_id", event.ID)
	return nil
}
