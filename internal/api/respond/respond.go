// Package respond writes the API's JSON responses and decodes request
// bodies. Error responses carry the request's trace ID so a client report
// can be matched against the server logs.
package respond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/redact"
)

type traceKey struct{}

// WithTraceID returns a context carrying a fresh trace ID.
func WithTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, traceKey{}, uuid.NewString())
}

// TraceID returns the trace ID from the context, or "" when none was set.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err, "path", r.URL.Path)
	}
}

// Error writes a JSON error response with the given message.
func Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, r, status, errorBody{
		Error:   message,
		TraceID: TraceID(r.Context()),
	})
}

// ErrorAndLog writes a sanitized error response and logs the underlying
// error with its trace ID. The raw error never reaches the client, and
// credentials inside it are redacted before logging. Server errors log at
// ERROR, client errors at DEBUG.
func ErrorAndLog(w http.ResponseWriter, r *http.Request, status int, userMessage string, err error) {
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("trace_id", TraceID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status_code", status),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", redact.Error(err)))
	}
	slog.LogAttrs(r.Context(), level, "request failed", attrs...)

	Error(w, r, status, userMessage)
}

// Decode reads the request body as JSON into v.
func Decode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
