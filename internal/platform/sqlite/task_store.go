package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/platform/logger"
	"github.com/yuexizhang/kindness-companion/internal/store"
	"github.com/yuexizhang/kindness-companion/internal/task"
)

// SQLiteTaskStore implements the task.TaskStore interface using a SQLite
// database as the storage backend. The resolver rebuilds execution logic
// for tasks loaded during crash recovery.
type SQLiteTaskStore struct {
	db       store.DBTX
	logger   *slog.Logger
	resolver task.ExecutorResolver
}

// NewTaskStore creates a SQLite implementation of the task.TaskStore
// interface. The resolver may be nil, in which case recovered tasks fail
// on execution with a descriptive error.
func NewTaskStore(db store.DBTX, logger *slog.Logger, resolver task.ExecutorResolver) *SQLiteTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteTaskStore{
		db:       db,
		logger:   logger.With(slog.String("component", "task_store")),
		resolver: resolver,
	}
}

var _ task.TaskStore = (*SQLiteTaskStore)(nil)

// WithTx implements task.TaskStore.WithTx
func (s *SQLiteTaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &SQLiteTaskStore{db: tx, logger: s.logger, resolver: s.resolver}
}

// SaveTask implements task.TaskStore.SaveTask
func (s *SQLiteTaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	now := toMillis(time.Now().UTC())
	query := `
		INSERT INTO tasks (id, type, payload, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, '', ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID().String(),
		t.Type(),
		t.Payload(),
		string(t.Status()),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus
func (s *SQLiteTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status),
		errorMsg,
		toMillis(time.Now().UTC()),
		taskID.String(),
	)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotFound)
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks
func (s *SQLiteTaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks
func (s *SQLiteTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *SQLiteTaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	query := `
		SELECT id, type, payload, status
		FROM tasks
		WHERE status = ? AND updated_at <= ?
		ORDER BY created_at
	`
	cutoff := time.Now().UTC()
	if olderThan > 0 {
		cutoff = cutoff.Add(-olderThan)
	}

	rows, err := s.db.QueryContext(ctx, query, string(status), toMillis(cutoff))
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []task.Task
	for rows.Next() {
		var (
			id       string
			taskType string
			payload  []byte
			rawState string
		)
		if err := rows.Scan(&id, &taskType, &payload, &rawState); err != nil {
			return nil, MapError(err)
		}

		taskID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed task ID %q", store.ErrInvalidEntity, id)
		}

		tasks = append(tasks, &recoveredTask{
			id:       taskID,
			taskType: taskType,
			payload:  payload,
			status:   task.TaskStatus(rawState),
			resolver: s.resolver,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// recoveredTask implements task.Task for rows loaded from the database.
// Execution logic is rebuilt lazily through the resolver.
type recoveredTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   task.TaskStatus
	resolver task.ExecutorResolver
}

var _ task.Task = (*recoveredTask)(nil)

func (t *recoveredTask) ID() uuid.UUID           { return t.id }
func (t *recoveredTask) Type() string            { return t.taskType }
func (t *recoveredTask) Payload() []byte         { return t.payload }
func (t *recoveredTask) Status() task.TaskStatus { return t.status }

func (t *recoveredTask) Execute(ctx context.Context) error {
	if t.resolver == nil {
		return fmt.Errorf("no executor resolver configured for recovered task %s", t.id)
	}
	execute, err := t.resolver.ResolveExecutor(t.taskType, t.payload)
	if err != nil {
		return fmt.Errorf("failed to resolve executor for task %s: %w", t.id, err)
	}
	return execute(ctx)
}
