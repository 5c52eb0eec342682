package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yuexizhang/kindness-companion/internal/api"
	"github.com/yuexizhang/kindness-companion/internal/api/middleware"
	"github.com/yuexizhang/kindness-companion/internal/config"
	"github.com/yuexizhang/kindness-companion/internal/events"
	"github.com/yuexizhang/kindness-companion/internal/generation"
	"github.com/yuexizhang/kindness-companion/internal/platform/sqlite"
	"github.com/yuexizhang/kindness-companion/internal/platform/zhipu"
	"github.com/yuexizhang/kindness-companion/internal/scheduler"
	"github.com/yuexizhang/kindness-companion/internal/service"
	"github.com/yuexizhang/kindness-companion/internal/service/auth"
	"github.com/yuexizhang/kindness-companion/internal/task"
)

// application bundles everything with a lifecycle: the database handle,
// the background task runner, the reminder scheduler, and the HTTP server.
type application struct {
	logger     *slog.Logger
	db         *sql.DB
	runner     *task.TaskRunner
	scheduler  *scheduler.ReminderScheduler
	httpServer *http.Server
}

// newApplication wires stores, services, handlers, and background workers
// from the configuration. Nothing is started yet; that happens in Run.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}
	hasher := auth.NewBcryptVerifier(cfg.Auth.BcryptCost)

	// Stores.
	userStore := sqlite.NewUserStore(db, logger, hasher)
	challengeStore := sqlite.NewChallengeStore(db, logger)
	progressStore := sqlite.NewProgressStore(db, logger)
	reminderStore := sqlite.NewReminderStore(db, logger)
	wallStore := sqlite.NewWallStore(db, logger)
	reportStore := sqlite.NewReportStore(db, logger)
	conversationStore := sqlite.NewConversationStore(db, logger)

	// The LLM backend is optional. Without an API key the pet and the
	// weekly reports fall back to canned responses.
	var petGenerator generation.PetGenerator
	var reportGenerator generation.ReportGenerator
	if generator, genErr := zhipu.NewGenerator(logger, cfg.LLM); genErr == nil {
		petGenerator = generator
		reportGenerator = generator
	} else if errors.Is(genErr, generation.ErrInvalidConfig) {
		logger.Warn("LLM backend not configured, AI features degraded to canned responses",
			"error", genErr)
	} else {
		db.Close()
		return nil, fmt.Errorf("failed to create LLM generator: %w", genErr)
	}

	// Background task pipeline: services emit events, the handler turns
	// them into persisted tasks, the runner executes them.
	emitter := events.NewInMemoryEventEmitter(logger)

	reportService := service.NewReportService(
		userStore, progressStore, challengeStore, reportStore,
		reportGenerator, emitter, logger,
	)

	taskFactory := task.NewReportGenerationTaskFactory(reportService, logger)
	taskStore := sqlite.NewTaskStore(db, logger, taskFactory)
	runner := task.NewTaskRunner(taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, runner, logger))

	reminderScheduler := scheduler.NewReminderScheduler(
		reminderStore, scheduler.NewLoggingReminderHandler(logger), logger,
	)

	// Services.
	userService := service.NewUserService(userStore, conversationStore, db, jwtService, hasher, logger)
	challengeService := service.NewChallengeService(challengeStore, logger)
	progressService := service.NewProgressService(progressStore, challengeStore, logger)
	reminderService := service.NewReminderService(reminderStore, reminderScheduler, logger)
	wallService := service.NewWallService(wallStore, logger)
	petService := service.NewPetService(userStore, conversationStore, petGenerator, logger)

	router := api.NewRouter(api.RouterConfig{
		Auth:           api.NewAuthHandler(userService),
		Users:          api.NewUserHandler(userService),
		Challenges:     api.NewChallengeHandler(challengeService),
		Progress:       api.NewProgressHandler(progressService, challengeService, petService),
		Reminders:      api.NewReminderHandler(reminderService),
		Pet:            api.NewPetHandler(petService),
		Reports:        api.NewReportHandler(reportService),
		Wall:           api.NewWallHandler(wallService),
		AuthMiddleware: middleware.NewAuthMiddleware(jwtService),
	})

	return &application{
		logger:    logger,
		db:        db,
		runner:    runner,
		scheduler: reminderScheduler,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run starts the background workers and the HTTP server, then blocks until
// the context is cancelled and everything has shut down.
func (a *application) Run(ctx context.Context) error {
	// Start also recovers tasks left unfinished by a previous run.
	if err := a.runner.Start(); err != nil {
		return fmt.Errorf("failed to start task runner: %w", err)
	}

	if err := a.scheduler.Start(ctx); err != nil {
		a.runner.Stop()
		return fmt.Errorf("failed to start reminder scheduler: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		a.shutdownWorkers()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", "error", err)
	}

	a.shutdownWorkers()
	return nil
}

func (a *application) shutdownWorkers() {
	a.scheduler.Stop()
	a.runner.Stop()
}

// Close releases resources that outlive Run.
func (a *application) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", "error", err)
	}
}
