package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/platform/sqlite"
	"github.com/yuexizhang/kindness-companion/internal/service/auth"
	"github.com/yuexizhang/kindness-companion/internal/store"
	"github.com/yuexizhang/kindness-companion/internal/testdb"
)

// testBcryptCost keeps password hashing fast in tests.
const testBcryptCost = 4

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testStores bundles a test database with real store implementations, so
// service tests exercise the actual SQL paths.
type testStores struct {
	db            *sql.DB
	users         store.UserStore
	challenges    store.ChallengeStore
	progress      store.ProgressStore
	reminders     store.ReminderStore
	wall          store.WallStore
	reports       store.ReportStore
	conversations store.ConversationStore
}

func newTestStores(t *testing.T) *testStores {
	t.Helper()

	db := testdb.New(t)
	log := testLogger()
	hasher := auth.NewBcryptVerifier(testBcryptCost)

	return &testStores{
		db:            db,
		users:         sqlite.NewUserStore(db, log, hasher),
		challenges:    sqlite.NewChallengeStore(db, log),
		progress:      sqlite.NewProgressStore(db, log),
		reminders:     sqlite.NewReminderStore(db, log),
		wall:          sqlite.NewWallStore(db, log),
		reports:       sqlite.NewReportStore(db, log),
		conversations: sqlite.NewConversationStore(db, log),
	}
}

func createTestUser(t *testing.T, s *testStores, username string) *domain.User {
	t.Helper()

	user, err := domain.NewUser(username, "password123", "")
	require.NoError(t, err)
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func createTestChallenge(t *testing.T, s *testStores, title string) *domain.Challenge {
	t.Helper()

	challenge, err := domain.NewChallenge(title, "测试描述", "日常", 1)
	require.NoError(t, err)
	require.NoError(t, s.challenges.Create(context.Background(), challenge))
	return challenge
}

func grantConsent(t *testing.T, s *testStores, userID uuid.UUID) {
	t.Helper()
	require.NoError(t, s.users.SetAIConsent(context.Background(), userID, true))
}
