package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// ChallengeService exposes the challenge catalog and manages subscriptions.
type ChallengeService struct {
	challengeStore store.ChallengeStore
	logger         *slog.Logger
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(challengeStore store.ChallengeStore, logger *slog.Logger) *ChallengeService {
	return &ChallengeService{
		challengeStore: challengeStore,
		logger:         logger.With(slog.String("component", "challenge_service")),
	}
}

// List retrieves catalog challenges matching the filter.
func (s *ChallengeService) List(ctx context.Context, filter store.ChallengeFilter) ([]*domain.Challenge, error) {
	challenges, err := s.challengeStore.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list challenges", "error", err)
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// Create adds a custom challenge to the catalog.
func (s *ChallengeService) Create(
	ctx context.Context,
	title, description, category string,
	difficulty int,
) (*domain.Challenge, error) {
	challenge, err := domain.NewChallenge(title, description, category, difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	if err := s.challengeStore.Create(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.logger.Info("custom challenge created",
		"challenge_id", challenge.ID, "title", challenge.Title)
	return challenge, nil
}

// Get retrieves a single challenge by ID.
func (s *ChallengeService) Get(ctx context.Context, challengeID uuid.UUID) (*domain.Challenge, error) {
	challenge, err := s.challengeStore.GetByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve challenge: %w", err)
	}
	return challenge, nil
}

// Categories retrieves the distinct category names in the catalog.
func (s *ChallengeService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.challengeStore.Categories(ctx)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err)
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Summary aggregates catalog counts by category and difficulty.
func (s *ChallengeService) Summary(ctx context.Context) (*domain.ChallengeSummary, error) {
	challenges, err := s.challengeStore.List(ctx, store.ChallengeFilter{})
	if err != nil {
		s.logger.Error("failed to load challenges for summary", "error", err)
		return nil, fmt.Errorf("failed to summarize challenges: %w", err)
	}
	return domain.Summarize(challenges), nil
}

// Subscribe adds the challenge to the user's active subscriptions.
// Returns store.ErrAlreadySubscribed on repeats and
// store.ErrChallengeNotFound for unknown challenges.
func (s *ChallengeService) Subscribe(ctx context.Context, userID, challengeID uuid.UUID) error {
	if err := s.challengeStore.Subscribe(ctx, userID, challengeID); err != nil {
		if store.IsDuplicateError(err) {
			s.logger.Debug("duplicate subscription",
				"user_id", userID, "challenge_id", challengeID)
		} else {
			s.logger.Error("failed to subscribe",
				"error", err, "user_id", userID, "challenge_id", challengeID)
		}
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	s.logger.Info("user subscribed to challenge",
		"user_id", userID, "challenge_id", challengeID)
	return nil
}

// Unsubscribe removes the user's subscription. The user's check-in history
// for the challenge is kept.
func (s *ChallengeService) Unsubscribe(ctx context.Context, userID, challengeID uuid.UUID) error {
	if err := s.challengeStore.Unsubscribe(ctx, userID, challengeID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	s.logger.Info("user unsubscribed from challenge",
		"user_id", userID, "challenge_id", challengeID)
	return nil
}

// ListSubscribed retrieves the challenges the user subscribes to.
func (s *ChallengeService) ListSubscribed(ctx context.Context, userID uuid.UUID) ([]*domain.Challenge, error) {
	challenges, err := s.challengeStore.ListSubscribed(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list subscriptions", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return challenges, nil
}
