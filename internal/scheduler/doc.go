// Package scheduler delivers challenge reminders at their configured times.
// It wraps a cron runner and keeps one cron entry per enabled reminder,
// rebuilding the entry set whenever a reminder is created, updated, or
// deleted.
package scheduler
