package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/api/middleware"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/events"
	"github.com/yuexizhang/kindness-companion/internal/platform/sqlite"
	"github.com/yuexizhang/kindness-companion/internal/service"
	"github.com/yuexizhang/kindness-companion/internal/service/auth"
	"github.com/yuexizhang/kindness-companion/internal/store"
	"github.com/yuexizhang/kindness-companion/internal/testdb"
)

const testJWTSecret = "test-jwt-secret-thats-at-least-32-chars"

// noopScheduler satisfies the reminder service without running cron.
type noopScheduler struct{}

func (noopScheduler) Schedule(*domain.ReminderDetail) error { return nil }
func (noopScheduler) Unschedule(uuid.UUID)                  {}

// testEnv wires real stores and services behind the production router so
// handler tests go through the full stack, including auth middleware.
type testEnv struct {
	router     http.Handler
	challenges store.ChallengeStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.New(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := auth.NewBcryptVerifier(4)
	jwtService := auth.NewTestJWTService(testJWTSecret, time.Hour, time.Now)

	users := sqlite.NewUserStore(db, log, hasher)
	challenges := sqlite.NewChallengeStore(db, log)
	progress := sqlite.NewProgressStore(db, log)
	reminders := sqlite.NewReminderStore(db, log)
	wall := sqlite.NewWallStore(db, log)
	reports := sqlite.NewReportStore(db, log)
	conversations := sqlite.NewConversationStore(db, log)

	userService := service.NewUserService(users, conversations, db, jwtService, hasher, log)
	challengeService := service.NewChallengeService(challenges, log)
	progressService := service.NewProgressService(progress, challenges, log)
	reminderService := service.NewReminderService(reminders, noopScheduler{}, log)
	wallService := service.NewWallService(wall, log)
	petService := service.NewPetService(users, conversations, nil, log)
	reportService := service.NewReportService(
		users, progress, challenges, reports, nil, events.NewInMemoryEventEmitter(log), log,
	)

	router := NewRouter(RouterConfig{
		Auth:           NewAuthHandler(userService),
		Users:          NewUserHandler(userService),
		Challenges:     NewChallengeHandler(challengeService),
		Progress:       NewProgressHandler(progressService, challengeService, petService),
		Reminders:      NewReminderHandler(reminderService),
		Pet:            NewPetHandler(petService),
		Reports:        NewReportHandler(reportService),
		Wall:           NewWallHandler(wallService),
		AuthMiddleware: middleware.NewAuthMiddleware(jwtService),
	})

	return &testEnv{router: router, challenges: challenges}
}

// do performs a request against the test router. A non-empty token is sent
// as a bearer credential.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), target))
}

// registerUser creates an account through the API and returns its tokens.
func registerUser(t *testing.T, e *testEnv, username string) AuthResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Username: username,
		Password: "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp AuthResponse
	decodeBody(t, rec, &resp)
	return resp
}

// firstChallengeID returns a seeded catalog challenge for subscription tests.
func firstChallengeID(t *testing.T, e *testEnv) uuid.UUID {
	t.Helper()

	all, err := e.challenges.List(context.Background(), store.ChallengeFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, all)
	return all[0].ID
}
