package zhipu

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/config"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// stubGenerator returns a Generator whose completion call is replaced by the
// given function, so no network traffic happens in tests.
func stubGenerator(complete func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)) *Generator {
	return &Generator{
		logger:   testLogger(),
		model:    "glm-4-flash",
		complete: complete,
	}
}

func TestNewGeneratorValidatesConfig(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(testLogger(), config.LLMConfig{Model: "glm-4-flash"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig, "missing API key should be rejected")

	_, err = NewGenerator(testLogger(), config.LLMConfig{APIKey: "key"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig, "missing model should be rejected")

	_, err = NewGenerator(nil, config.LLMConfig{APIKey: "key", Model: "glm-4-flash"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig, "nil logger should be rejected")

	g, err := NewGenerator(testLogger(), config.LLMConfig{APIKey: "key", Model: "glm-4-flash"})
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestGenerateReactionParsesJSON(t *testing.T) {
	t.Parallel()

	g := stubGenerator(func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		return `{"dialogue": "You did it! I'm so proud of you!", "emotion": "positive"}`, nil
	})

	reaction, err := g.GenerateReaction(context.Background(), domain.PetEvent{
		UserID:  uuid.New(),
		Type:    domain.PetEventCheckIn,
		Message: "Give a sincere compliment",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "You did it! I'm so proud of you!", reaction.Dialogue)
	assert.Equal(t, domain.EmotionPositive, reaction.Emotion)
	assert.Equal(t, domain.MoodHappy, reaction.Mood)
}

func TestGenerateReactionHandlesFencedJSON(t *testing.T) {
	t.Parallel()

	g := stubGenerator(func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		return "```json\n{\"dialogue\": \"That sounds hard. I'm here with you.\", \"emotion\": \"negative\"}\n```", nil
	})

	reaction, err := g.GenerateReaction(context.Background(), domain.PetEvent{
		UserID:  uuid.New(),
		Type:    domain.PetEventReflection,
		Message: "Today was rough",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.EmotionNegative, reaction.Emotion)
	assert.Equal(t, domain.MoodConcerned, reaction.Mood)
}

func TestGenerateReactionFallsBackOnPlainText(t *testing.T) {
	t.Parallel()

	g := stubGenerator(func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		return "Hello there, friend!", nil
	})

	reaction, err := g.GenerateReaction(context.Background(), domain.PetEvent{
		UserID:  uuid.New(),
		Type:    domain.PetEventMessage,
		Message: "hi",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Hello there, friend!", reaction.Dialogue)
	assert.Equal(t, domain.EmotionNeutral, reaction.Emotion)
	assert.Equal(t, domain.MoodNeutral, reaction.Mood)
}

func TestGenerateReactionIncludesHistory(t *testing.T) {
	t.Parallel()

	var captured []openai.ChatCompletionMessageParamUnion
	g := stubGenerator(func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		captured = messages
		return `{"dialogue": "ok", "emotion": "neutral"}`, nil
	})

	userID := uuid.New()
	history := []domain.ConversationMessage{
		{UserID: userID, Message: "hello", IsUser: true},
		{UserID: userID, Message: "hi friend", IsUser: false},
	}

	_, err := g.GenerateReaction(context.Background(), domain.PetEvent{
		UserID:  userID,
		Type:    domain.PetEventMessage,
		Message: "how are you?",
	}, history)
	require.NoError(t, err)

	// system prompt + 2 history lines + event message
	assert.Len(t, captured, 4)
}

func TestGenerateReactionFailsAfterRetries(t *testing.T) {
	t.Parallel()

	calls := 0
	g := stubGenerator(func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		calls++
		return "", errors.New("upstream unavailable")
	})
	// No delay between attempts in tests.
	g.logger = testLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.GenerateReaction(ctx, domain.PetEvent{
		UserID:  uuid.New(),
		Type:    domain.PetEventMessage,
		Message: "hi",
	}, nil)
	require.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestGenerateWeeklyReport(t *testing.T) {
	t.Parallel()

	g := stubGenerator(func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		return "  What a lovely week of kindness you had.  ", nil
	})

	text, err := g.GenerateWeeklyReport(context.Background(), generation.ReportStats{
		Username:      "sunny",
		TotalCheckIns: 5,
		CurrentStreak: 3,
		CategoryCounts: map[string]int{
			"Community": 2,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "What a lovely week of kindness you had.", text)
}

func TestGenerateWeeklyReportRejectsEmptyContent(t *testing.T) {
	t.Parallel()

	g := stubGenerator(func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		return "   ", nil
	})

	_, err := g.GenerateWeeklyReport(context.Background(), generation.ReportStats{Username: "sunny"})
	assert.ErrorIs(t, err, generation.ErrEmptyResponse)
}
