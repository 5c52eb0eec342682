package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// stubPetGenerator returns a fixed reaction and records what it was asked.
type stubPetGenerator struct {
	mu       sync.Mutex
	reaction *domain.PetReaction
	err      error

	calls       int
	lastEvent   domain.PetEvent
	lastHistory []domain.ConversationMessage
}

func (g *stubPetGenerator) GenerateReaction(
	_ context.Context,
	event domain.PetEvent,
	history []domain.ConversationMessage,
) (*domain.PetReaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastEvent = event
	g.lastHistory = history
	if g.err != nil {
		return nil, g.err
	}
	return g.reaction, nil
}

func TestReactWithoutConsentUsesCannedReply(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	gen := &stubPetGenerator{reaction: &domain.PetReaction{Dialogue: "生成的台词"}}
	svc := NewPetService(s.users, s.conversations, gen, testLogger())
	ctx := context.Background()

	user := createTestUser(t, s, "hesitant")

	reaction, err := svc.React(ctx, domain.PetEvent{
		UserID:  user.ID,
		Type:    domain.PetEventMessage,
		Message: "你好",
	})
	require.NoError(t, err)
	assert.Equal(t, defaultReactions[domain.PetEventMessage].Dialogue, reaction.Dialogue)
	assert.Equal(t, 0, gen.calls, "the LLM must not see text from non-consenting users")

	// Nothing is persisted either.
	history, err := s.conversations.Recent(ctx, user.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestReactGeneratesAndRecordsConversation(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	gen := &stubPetGenerator{reaction: &domain.PetReaction{
		Dialogue: "听起来真不错！",
		Emotion:  domain.EmotionPositive,
		Mood:     domain.MoodHappy,
	}}
	svc := NewPetService(s.users, s.conversations, gen, testLogger())
	ctx := context.Background()

	user := createTestUser(t, s, "talker")
	grantConsent(t, s, user.ID)

	reaction, err := svc.React(ctx, domain.PetEvent{
		UserID:  user.ID,
		Type:    domain.PetEventMessage,
		Message: "我今天帮了一个同学",
	})
	require.NoError(t, err)
	assert.Equal(t, "听起来真不错！", reaction.Dialogue)
	assert.Equal(t, domain.MoodHappy, reaction.Mood)
	assert.Equal(t, 1, gen.calls)

	history, err := svc.History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].IsUser)
	assert.Equal(t, "我今天帮了一个同学", history[0].Message)
	assert.False(t, history[1].IsUser)
	assert.Equal(t, "听起来真不错！", history[1].Message)
}

func TestReactFeedsHistoryToGenerator(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	gen := &stubPetGenerator{reaction: &domain.PetReaction{Dialogue: "好的"}}
	svc := NewPetService(s.users, s.conversations, gen, testLogger())
	ctx := context.Background()

	user := createTestUser(t, s, "talker")
	grantConsent(t, s, user.ID)

	_, err := svc.React(ctx, domain.PetEvent{
		UserID: user.ID, Type: domain.PetEventMessage, Message: "第一句",
	})
	require.NoError(t, err)

	_, err = svc.React(ctx, domain.PetEvent{
		UserID: user.ID, Type: domain.PetEventMessage, Message: "第二句",
	})
	require.NoError(t, err)

	// The second call sees the first exchange as context.
	assert.Len(t, gen.lastHistory, 2)
}

func TestReactCheckInStoresOnlyPetLine(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	gen := &stubPetGenerator{reaction: &domain.PetReaction{Dialogue: "恭喜打卡！"}}
	svc := NewPetService(s.users, s.conversations, gen, testLogger())
	ctx := context.Background()

	user := createTestUser(t, s, "checker")
	grantConsent(t, s, user.ID)

	_, err := svc.React(ctx, domain.PetEvent{
		UserID:  user.ID,
		Type:    domain.PetEventCheckIn,
		Message: "每日微笑",
	})
	require.NoError(t, err)

	history, err := svc.History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].IsUser)
}

func TestReactDegradesOnGeneratorFailure(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	gen := &stubPetGenerator{err: errors.New("provider down")}
	svc := NewPetService(s.users, s.conversations, gen, testLogger())
	ctx := context.Background()

	user := createTestUser(t, s, "talker")
	grantConsent(t, s, user.ID)

	reaction, err := svc.React(ctx, domain.PetEvent{
		UserID:  user.ID,
		Type:    domain.PetEventReflection,
		Message: "今天有点累",
	})
	require.NoError(t, err, "generation failures must not surface to the user")
	assert.Equal(t, defaultReactions[domain.PetEventReflection].Dialogue, reaction.Dialogue)
}

func TestReactNilGenerator(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	svc := NewPetService(s.users, s.conversations, nil, testLogger())
	ctx := context.Background()

	user := createTestUser(t, s, "talker")
	grantConsent(t, s, user.ID)

	reaction, err := svc.React(ctx, domain.PetEvent{
		UserID:  user.ID,
		Type:    domain.PetEventCheckIn,
		Message: "每日微笑",
	})
	require.NoError(t, err)
	assert.Equal(t, defaultReactions[domain.PetEventCheckIn].Dialogue, reaction.Dialogue)
}

func TestReactRejectsInvalidEvent(t *testing.T) {
	t.Parallel()

	s := newTestStores(t)
	svc := NewPetService(s.users, s.conversations, nil, testLogger())

	user := createTestUser(t, s, "talker")
	_, err := svc.React(context.Background(), domain.PetEvent{
		UserID: user.ID,
		Type:   "mystery_event",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPetEvent)
}
