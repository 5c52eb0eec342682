package middleware

import (
	"log/slog"
	"net/http"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
)

// Trace assigns every request a trace ID and logs its arrival. It runs
// early in the chain so error responses and downstream logs share the ID.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := respond.WithTraceID(r.Context())

		slog.Debug("request started",
			slog.String("trace_id", respond.TraceID(ctx)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
