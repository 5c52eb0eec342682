package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/redact"
	"github.com/yuexizhang/kindness-companion/internal/service/auth"
)

type userIDKey struct{}

// AuthMiddleware authenticates requests with a Bearer access token.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// Authenticate validates the Authorization header and stores the token's
// user ID in the request context for handlers to pick up via UserID.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			respond.Error(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respond.Error(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch err {
			case auth.ErrExpiredToken:
				respond.Error(w, r, http.StatusUnauthorized, "Token expired")
			case auth.ErrInvalidToken:
				respond.Error(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", redact.Error(err))
				respond.Error(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user's ID from the request context.
// The boolean is false on requests that did not pass Authenticate.
func UserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(userIDKey{}).(uuid.UUID)
	return userID, ok
}
