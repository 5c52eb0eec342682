// Package generation provides interfaces for interacting with external
// AI/LLM services. It abstracts the details of the chat completion API,
// allowing the application to produce pet dialogue and weekly report text
// without coupling to a specific provider.
package generation
