// Package service implements the application use cases on top of the store
// interfaces: registration and login, challenge subscriptions, daily
// check-ins and their statistics, reminders, the kindness wall, the virtual
// pet, and weekly reports. Services own transaction boundaries and translate
// store errors into the sentinel errors the API layer maps to status codes.
package service
