// Package migrations bundles the goose SQL migrations into the binary so
// schema setup needs no external files.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedded embed.FS

// Apply runs all pending migrations against the given database.
func Apply(db *sql.DB) error {
	goose.SetBaseFS(embedded)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
