// Package domain contains the core business entities of the kindness
// companion application: users, challenges, subscriptions, check-ins,
// reminders, wall posts, weekly reports, and the virtual pet's events.
//
// Entities in this package are persistence-agnostic. They carry their own
// validation rules and sentinel errors; the store layer is responsible for
// durability and uniqueness that spans more than one entity.
package domain
