package sqlite

import (
	"database/sql"
	"strings"
)

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullBool maps a nil pointer to SQL NULL.
func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// containsColumn reports whether a constraint error message names the given
// table.column. SQLite encodes the violated column in the message text,
// e.g. "UNIQUE constraint failed: users.username".
func containsColumn(msg, column string) bool {
	return strings.Contains(strings.ToLower(msg), strings.ToLower(column))
}
