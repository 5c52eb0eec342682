// Package sqlite implements the store interfaces over a SQLite database,
// using the pure-Go modernc.org/sqlite driver. Timestamps are stored as
// Unix milliseconds and calendar dates as YYYY-MM-DD text, so values
// round-trip without depending on driver-side time parsing.
package sqlite
