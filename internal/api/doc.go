// Package api implements the HTTP handlers for the kindness companion
// server: authentication, profiles, the challenge catalog, check-ins,
// reminders, the virtual pet, weekly reports, and the kindness wall.
// Handlers validate input, call the service layer, and translate service
// errors into sanitized JSON responses.
package api
