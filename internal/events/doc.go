// Package events provides types and interfaces for loosely coupled
// event dispatch. Services emit task request events without knowing which
// handlers will process them, which keeps the report pipeline free of
// circular dependencies between the service and task layers.
package events
