package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/config"
)

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	svc := NewTestJWTService(secret, tokenLifetime, func() time.Time {
		return fixedTime
	})

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(tokenLifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	wrongSecret := "wrong-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	t.Run("rejects expired token", func(t *testing.T) {
		t.Parallel()
		issuer := NewTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})
		token, err := issuer.GenerateToken(context.Background(), userID)
		require.NoError(t, err)

		// Validate after the lifetime has passed.
		validator := NewTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime.Add(tokenLifetime + time.Minute)
		})
		_, err = validator.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		t.Parallel()
		issuer := NewTestJWTService(wrongSecret, tokenLifetime, func() time.Time {
			return fixedTime
		})
		token, err := issuer.GenerateToken(context.Background(), userID)
		require.NoError(t, err)

		validator := NewTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})
		_, err = validator.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		t.Parallel()
		svc := NewTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})
		_, err := svc.ValidateToken(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects refresh token presented as access token", func(t *testing.T) {
		t.Parallel()
		svc := NewTestJWTService(secret, tokenLifetime, func() time.Time {
			return fixedTime
		})
		refresh, err := svc.GenerateRefreshToken(context.Background(), userID)
		require.NoError(t, err)

		_, err = svc.ValidateToken(context.Background(), refresh)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	secret := "test-secret-that-is-long-enough-for-testing"
	userID := uuid.New()

	svc := NewTestJWTService(secret, tokenLifetime, func() time.Time {
		return fixedTime
	})

	refresh, err := svc.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(context.Background(), refresh)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
	assert.Equal(t, userID, claims.UserID)
	// Refresh tokens outlive access tokens.
	assert.Equal(t, fixedTime.Add(2*tokenLifetime).Unix(), claims.ExpiresAt.Unix())

	// An access token must not pass refresh validation.
	access, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	_, err = svc.ValidateRefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestNewJWTServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{
		JWTSecret:                   "short",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 120,
	})
	require.Error(t, err)
}

func TestBcryptVerifier(t *testing.T) {
	t.Parallel()

	v := NewBcryptVerifier(4) // minimum cost keeps the test fast

	hashed, err := v.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hashed)

	assert.NoError(t, v.Compare(hashed, "correct horse battery staple"))
	assert.Error(t, v.Compare(hashed, "wrong password"))
}
