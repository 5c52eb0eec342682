package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/service/auth"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// TokenPair carries the access and refresh tokens issued on login and
// refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ProfileUpdate holds the optional profile fields of an update request.
// Nil pointers leave the stored value untouched.
type ProfileUpdate struct {
	Email      *string
	Bio        *string
	AvatarPath *string
	Password   *string
}

// UserService handles registration, login, token refresh, and profile
// management.
type UserService struct {
	userStore         store.UserStore
	conversationStore store.ConversationStore
	db                *sql.DB
	jwtService        auth.JWTService
	passwordVerifier  auth.PasswordVerifier
	logger            *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	conversationStore store.ConversationStore,
	db *sql.DB,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userStore:         userStore,
		conversationStore: conversationStore,
		db:                db,
		jwtService:        jwtService,
		passwordVerifier:  passwordVerifier,
		logger:            logger.With(slog.String("component", "user_service")),
	}
}

// Register creates a new user account. The email is optional.
// Returns store.ErrUsernameExists or store.ErrEmailExists on conflicts and
// domain validation errors for malformed input.
func (s *UserService) Register(ctx context.Context, username, password, email string) (*domain.User, error) {
	user, err := domain.NewUser(username, password, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("registration conflict", "username", username)
		} else {
			s.logger.Error("failed to save user", "error", err, "username", username)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login authenticates a user by username and password and issues a token
// pair. Returns ErrInvalidCredentials for unknown users and wrong passwords
// alike, so callers cannot probe which usernames exist.
func (s *UserService) Login(ctx context.Context, username, password string) (*domain.User, *TokenPair, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown username", "username", username)
			return nil, nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for login", "error", err, "username", username)
		return nil, nil, fmt.Errorf("failed to log in: %w", err)
	}

	if err := s.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password", "user_id", user.ID)
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.userStore.RecordLogin(ctx, user.ID); err != nil {
		// The login itself succeeded; a missing timestamp is not worth
		// failing the request over.
		s.logger.Warn("failed to record login time", "error", err, "user_id", user.ID)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
// Returns auth.ErrExpiredToken or auth.ErrInvalidToken on bad tokens.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	// Make sure the account still exists before minting new tokens.
	if _, err := s.userStore.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to refresh tokens: %w", err)
	}

	return s.issueTokens(ctx, claims.UserID)
}

func (s *UserService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		s.logger.Error("failed to generate access token", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		s.logger.Error("failed to generate refresh token", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// GetProfile retrieves a user by their ID.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of the update to the user's
// profile, following the pattern of loading the complete user first and
// writing the complete object back.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	var updated *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		if update.Email != nil {
			user.Email = *update.Email
		}
		if update.Bio != nil {
			user.Bio = *update.Bio
		}
		if update.AvatarPath != nil {
			user.AvatarPath = *update.AvatarPath
		}
		if update.Password != nil {
			user.Password = *update.Password
		}

		if err := txStore.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		updated = user
		return nil
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("profile update conflict", "user_id", userID)
		} else {
			s.logger.Error("failed to update profile", "error", err, "user_id", userID)
		}
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", userID)
	return updated, nil
}

// SetAIConsent records the user's decision about AI processing. Revoking
// consent also deletes the stored pet conversation history in the same
// transaction, so no text lingers that the user no longer allows to be
// processed.
func (s *UserService) SetAIConsent(ctx context.Context, userID uuid.UUID, granted bool) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.userStore.WithTx(tx).SetAIConsent(ctx, userID, granted); err != nil {
			return err
		}
		if !granted {
			return s.conversationStore.WithTx(tx).DeleteByUser(ctx, userID)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to set AI consent", "error", err, "user_id", userID)
		return fmt.Errorf("failed to set AI consent: %w", err)
	}

	s.logger.Info("AI consent updated", "user_id", userID, "granted", granted)
	return nil
}

// DeleteAccount removes a user and, through the schema's cascades, all of
// their subscriptions, check-ins, reminders, posts, reports, and
// conversation history. The password must be confirmed first.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to retrieve user for deletion: %w", err)
	}

	if err := s.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("account deletion with wrong password", "user_id", userID)
		return ErrInvalidCredentials
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Delete(ctx, userID)
	})
	if err != nil {
		s.logger.Error("failed to delete account", "error", err, "user_id", userID)
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.Info("account deleted", "user_id", userID)
	return nil
}
