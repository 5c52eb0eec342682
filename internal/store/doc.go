// Package store defines the persistence interfaces for the application's
// entities along with the sentinel errors store implementations must map
// driver failures to. Implementations live under internal/platform; the
// interfaces here keep services testable against in-memory fakes.
package store
