// Package task manages background job queuing, processing, and lifecycle.
// It provides asynchronous execution of long-running operations like
// weekly report generation, so LLM calls never block HTTP request
// handling, and tasks survive application restarts.
package task
