package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/generation"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// conversationWindow is the number of recent history lines fed into the
// dialogue prompt.
const conversationWindow = 10

// defaultReactions are the canned pet replies used when the LLM is not
// available: no consent, no API key configured, or a generation failure.
// The pet always answers.
var defaultReactions = map[domain.PetEventType]domain.PetReaction{
	domain.PetEventCheckIn: {
		Dialogue: "太棒了！又完成了一次善行，我为你感到骄傲！",
		Emotion:  domain.EmotionPositive,
		Mood:     domain.MoodHappy,
	},
	domain.PetEventReflection: {
		Dialogue: "谢谢你愿意和我分享这些，我会一直记得的。",
		Emotion:  domain.EmotionNeutral,
		Mood:     domain.MoodNeutral,
	},
	domain.PetEventMessage: {
		Dialogue: "我在这里陪着你呢，随时可以和我聊聊。",
		Emotion:  domain.EmotionNeutral,
		Mood:     domain.MoodNeutral,
	},
}

// PetService produces the virtual pet's reactions to user activity and
// keeps the conversation history that gives the dialogue its context.
//
// Reactions never fail because of the LLM. Users without AI consent, or any
// generation problem, get a canned reply instead of an error.
type PetService struct {
	userStore         store.UserStore
	conversationStore store.ConversationStore
	generator         generation.PetGenerator
	logger            *slog.Logger
}

// NewPetService creates a new PetService. The generator may be nil, in
// which case every reaction is a canned one.
func NewPetService(
	userStore store.UserStore,
	conversationStore store.ConversationStore,
	generator generation.PetGenerator,
	logger *slog.Logger,
) *PetService {
	return &PetService{
		userStore:         userStore,
		conversationStore: conversationStore,
		generator:         generator,
		logger:            logger.With(slog.String("component", "pet_service")),
	}
}

// React produces the pet's response to an event. Without AI consent the
// reply is canned and nothing is persisted, so no user text reaches the
// LLM provider or the conversation table.
func (s *PetService) React(ctx context.Context, event domain.PetEvent) (*domain.PetReaction, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pet event: %w", err)
	}

	user, err := s.userStore.GetByID(ctx, event.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !user.ConsentGranted() {
		s.logger.Debug("pet reaction without AI consent", "user_id", event.UserID)
		reaction := defaultReactions[event.Type]
		return &reaction, nil
	}

	history, err := s.recentHistory(ctx, event.UserID)
	if err != nil {
		// Degraded context, not a failed reaction.
		s.logger.Warn("failed to load conversation history",
			"error", err, "user_id", event.UserID)
		history = nil
	}

	s.recordUserLine(ctx, event)

	reaction := s.generate(ctx, event, history)
	s.recordPetLine(ctx, event, reaction.Dialogue)

	return reaction, nil
}

// History retrieves the user's most recent conversation lines in
// chronological order.
func (s *PetService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.ConversationMessage, error) {
	messages, err := s.conversationStore.Recent(ctx, userID, limit)
	if err != nil {
		s.logger.Error("failed to load conversation history", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}
	return messages, nil
}

func (s *PetService) generate(
	ctx context.Context,
	event domain.PetEvent,
	history []domain.ConversationMessage,
) *domain.PetReaction {
	if s.generator == nil {
		reaction := defaultReactions[event.Type]
		return &reaction
	}

	reaction, err := s.generator.GenerateReaction(ctx, event, history)
	if err != nil {
		s.logger.Warn("reaction generation failed, using default",
			"error", err,
			"user_id", event.UserID,
			"event_type", string(event.Type))
		fallback := defaultReactions[event.Type]
		return &fallback
	}
	return reaction
}

func (s *PetService) recentHistory(ctx context.Context, userID uuid.UUID) ([]domain.ConversationMessage, error) {
	messages, err := s.conversationStore.Recent(ctx, userID, conversationWindow)
	if err != nil {
		return nil, err
	}

	history := make([]domain.ConversationMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, *msg)
	}
	return history, nil
}

// recordUserLine appends the user's side of the exchange. Check-in events
// carry no user text, so only reflections and messages are stored.
func (s *PetService) recordUserLine(ctx context.Context, event domain.PetEvent) {
	if event.Type == domain.PetEventCheckIn {
		return
	}

	s.appendLine(ctx, &domain.ConversationMessage{
		UserID:    event.UserID,
		Message:   event.Message,
		IsUser:    true,
		ContextID: string(event.Type),
	})
}

func (s *PetService) recordPetLine(ctx context.Context, event domain.PetEvent, dialogue string) {
	s.appendLine(ctx, &domain.ConversationMessage{
		UserID:    event.UserID,
		Message:   dialogue,
		IsUser:    false,
		ContextID: string(event.Type),
	})
}

// appendLine persists one history line. Failures degrade future context
// instead of failing the reaction, so they are only logged.
func (s *PetService) appendLine(ctx context.Context, msg *domain.ConversationMessage) {
	if err := s.conversationStore.Append(ctx, msg); err != nil {
		s.logger.Warn("failed to append conversation line",
			"error", err, "user_id", msg.UserID)
	}
}
