package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Pet event validation errors.
var (
	ErrInvalidPetEvent = errors.New("invalid pet event type")
	ErrEmptyMessage    = errors.New("message cannot be empty")
)

// PetEventType identifies what prompted a pet interaction.
type PetEventType string

// Pet event types recognized by the dialogue generator.
const (
	PetEventCheckIn    PetEventType = "check_in"
	PetEventReflection PetEventType = "reflection_added"
	PetEventMessage    PetEventType = "user_message"
)

// Valid reports whether the event type is one the pet understands.
func (t PetEventType) Valid() bool {
	switch t {
	case PetEventCheckIn, PetEventReflection, PetEventMessage:
		return true
	}
	return false
}

// PetMood is the pet's displayed emotional state.
type PetMood string

// Pet moods. The frontend maps these to sprite animations.
const (
	MoodNeutral   PetMood = "neutral"
	MoodHappy     PetMood = "happy"
	MoodExcited   PetMood = "excited"
	MoodConcerned PetMood = "concerned"
	MoodConfused  PetMood = "confused"
)

// Emotion is the coarse sentiment classification of user text.
type Emotion string

// Emotion categories produced by the analyzer.
const (
	EmotionPositive Emotion = "positive"
	EmotionNegative Emotion = "negative"
	EmotionNeutral  Emotion = "neutral"
)

// MoodForEmotion maps an analyzed emotion to the pet mood shown alongside
// the reply.
func MoodForEmotion(e Emotion) PetMood {
	switch e {
	case EmotionPositive:
		return MoodHappy
	case EmotionNegative:
		return MoodConcerned
	default:
		return MoodNeutral
	}
}

// PetEvent is a single interaction with the virtual pet.
type PetEvent struct {
	UserID uuid.UUID    `json:"user_id"`
	Type   PetEventType `json:"type"`
	// Message carries the user's text for reflection and message events,
	// and the challenge title for check-in events.
	Message string `json:"message,omitempty"`
}

// Validate checks if the PetEvent has valid data.
func (e *PetEvent) Validate() error {
	if e.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if !e.Type.Valid() {
		return ErrInvalidPetEvent
	}
	if e.Type != PetEventCheckIn && e.Message == "" {
		return ErrEmptyMessage
	}
	return nil
}

// PetReaction is the pet's response to an event.
type PetReaction struct {
	Dialogue string  `json:"dialogue"`
	Emotion  Emotion `json:"emotion"`
	Mood     PetMood `json:"suggested_animation"`
}

// ConversationMessage is one line of the pet conversation history,
// either from the user or from the pet.
type ConversationMessage struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	IsUser    bool      `json:"is_user"`
	ContextID string    `json:"context_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
