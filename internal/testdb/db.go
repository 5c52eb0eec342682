// Package testdb provides in-memory SQLite databases for tests, with the
// full schema applied. It depends only on the migrations and the driver,
// not on any store implementation.
package testdb

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/yuexizhang/kindness-companion/internal/platform/sqlite/migrations"
)

// goose keeps global state (base FS, dialect), so migration runs from
// parallel tests must not interleave.
var migrateMu sync.Mutex

// New opens a fresh in-memory database with all migrations applied.
// Each call gets its own database; it is closed when the test finishes.
func New(t *testing.T) *sql.DB {
	t.Helper()

	// A named in-memory database with a shared cache lives as long as one
	// connection stays open, so the schema survives pool churn.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "failed to open test database")
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	migrateMu.Lock()
	defer migrateMu.Unlock()
	require.NoError(t, migrations.Apply(db), "failed to migrate test database")

	return db
}
