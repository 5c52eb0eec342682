package zhipu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/yuexizhang/kindness-companion/internal/config"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/generation"
)

// Retry settings for chat completion calls.
const (
	maxRetries     = 2
	baseRetryDelay = 2 * time.Second
)

// historyLimit caps how many past conversation lines are sent as context.
const historyLimit = 10

// Generator implements generation.PetGenerator and generation.ReportGenerator
// using the ZhipuAI chat completion API.
type Generator struct {
	logger *slog.Logger
	model  string

	// complete performs one chat completion call and returns the first
	// choice's content. Injectable for testing.
	complete func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
}

var (
	_ generation.PetGenerator    = (*Generator)(nil)
	_ generation.ReportGenerator = (*Generator)(nil)
)

// NewGenerator creates a Generator from the LLM configuration.
// Returns generation.ErrInvalidConfig when the API key is missing; the
// caller decides whether to fall back to canned responses.
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, fmt.Errorf("%w: logger cannot be nil", generation.ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	g := &Generator{
		logger: logger.With("component", "zhipu_generator"),
		model:  cfg.Model,
	}
	g.complete = func(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
		resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    g.model,
			Messages: messages,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", generation.ErrEmptyResponse
		}
		return resp.Choices[0].Message.Content, nil
	}
	return g, nil
}

// reactionSchema is the JSON shape the model is instructed to return for
// pet events.
type reactionSchema struct {
	Dialogue string `json:"dialogue"`
	Emotion  string `json:"emotion"`
}

const petSystemPrompt = `You are a warm, gentle virtual pet companion in a kindness habit tracker.
Reply to the user in one or two short sentences, encouraging and never judgmental.
Respond ONLY with a JSON object of the form {"dialogue": "...", "emotion": "positive|negative|neutral"}.
The emotion field classifies the USER's state, not your reply.`

// GenerateReaction produces the pet's response to an event.
func (g *Generator) GenerateReaction(
	ctx context.Context,
	event domain.PetEvent,
	history []domain.ConversationMessage,
) (*domain.PetReaction, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(petSystemPrompt),
	}
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	for _, msg := range history {
		if msg.IsUser {
			messages = append(messages, openai.UserMessage(msg.Message))
		} else {
			messages = append(messages, openai.AssistantMessage(msg.Message))
		}
	}
	messages = append(messages, openai.UserMessage(eventPrompt(event)))

	content, err := g.callWithRetry(ctx, messages)
	if err != nil {
		return nil, err
	}

	var parsed reactionSchema
	if jsonErr := json.Unmarshal([]byte(extractJSON(content)), &parsed); jsonErr != nil || parsed.Dialogue == "" {
		// The model ignored the format instruction. Use the raw text as
		// dialogue rather than failing the interaction.
		g.logger.DebugContext(ctx, "pet reaction was not valid JSON, using raw text",
			"content_length", len(content))
		parsed = reactionSchema{Dialogue: strings.TrimSpace(content), Emotion: string(domain.EmotionNeutral)}
	}

	emotion := domain.Emotion(parsed.Emotion)
	switch emotion {
	case domain.EmotionPositive, domain.EmotionNegative, domain.EmotionNeutral:
	default:
		emotion = domain.EmotionNeutral
	}

	return &domain.PetReaction{
		Dialogue: parsed.Dialogue,
		Emotion:  emotion,
		Mood:     domain.MoodForEmotion(emotion),
	}, nil
}

// eventPrompt renders a pet event as the user turn of the conversation.
func eventPrompt(event domain.PetEvent) string {
	switch event.Type {
	case domain.PetEventCheckIn:
		if event.Message != "" {
			return fmt.Sprintf("I just completed my kindness challenge: %s. Celebrate with me!", event.Message)
		}
		return "I just completed my daily kindness challenge. Celebrate with me!"
	case domain.PetEventReflection:
		return fmt.Sprintf("Here is my reflection on today's kindness practice: %s", event.Message)
	default:
		return event.Message
	}
}

const reportSystemPrompt = `You write short weekly summaries for a kindness habit tracker.
Given a user's statistics, write 3 to 5 warm, specific sentences reviewing their week
and gently encouraging them for the next one. Write plain prose, no lists or headings.`

// GenerateWeeklyReport produces an encouraging summary of the user's week.
func (g *Generator) GenerateWeeklyReport(
	ctx context.Context,
	stats generation.ReportStats,
) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User: %s\n", stats.Username)
	fmt.Fprintf(&sb, "Week: %s to %s\n",
		stats.StartDate.Format(domain.DateLayout), stats.EndDate.Format(domain.DateLayout))
	fmt.Fprintf(&sb, "Check-ins this week: %d\n", stats.TotalCheckIns)
	fmt.Fprintf(&sb, "Current streak: %d days\n", stats.CurrentStreak)
	for category, count := range stats.CategoryCounts {
		fmt.Fprintf(&sb, "Category %q: %d check-ins\n", category, count)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(reportSystemPrompt),
		openai.UserMessage(sb.String()),
	}

	content, err := g.callWithRetry(ctx, messages)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", generation.ErrEmptyResponse
	}
	return content, nil
}

// callWithRetry performs the completion call with exponential backoff and
// jitter for transient failures.
func (g *Generator) callWithRetry(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseRetryDelay << (attempt - 1)
			delay += time.Duration(rand.Int63n(int64(delay / 2)))
			g.logger.DebugContext(ctx, "retrying chat completion",
				"attempt", attempt+1,
				"delay", delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, ctx.Err())
			case <-time.After(delay):
			}
		}

		content, err := g.complete(ctx, messages)
		if err == nil {
			return content, nil
		}
		lastErr = err
		g.logger.WarnContext(ctx, "chat completion call failed",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"error", err)
	}
	return "", fmt.Errorf("%w: %v", generation.ErrGenerationFailed, lastErr)
}

// extractJSON pulls the first JSON object out of a model reply that may be
// wrapped in markdown fences or surrounding prose.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}
