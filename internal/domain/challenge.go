package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Challenge validation errors.
var (
	ErrEmptyChallengeID    = errors.New("challenge ID cannot be empty")
	ErrEmptyTitle          = errors.New("challenge title cannot be empty")
	ErrEmptyDescription    = errors.New("challenge description cannot be empty")
	ErrEmptyCategory       = errors.New("challenge category cannot be empty")
	ErrInvalidDifficulty   = errors.New("challenge difficulty must be between 1 and 5")
	ErrChallengeIncomplete = errors.New("challenge record is incomplete")
)

// Difficulty bounds for challenges. Level 1 is a small everyday act,
// level 5 a sustained commitment.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Challenge represents a kindness challenge users can subscribe to and
// check in against, e.g. "每日微笑" or "社区清洁".
type Challenge struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Difficulty  int       `json:"difficulty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewChallenge creates a new custom Challenge with the given attributes.
// Leading and trailing whitespace is trimmed from text fields.
// Returns an error if validation fails.
func NewChallenge(title, description, category string, difficulty int) (*Challenge, error) {
	challenge := &Challenge{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    strings.TrimSpace(category),
		Difficulty:  difficulty,
		CreatedAt:   time.Now().UTC(),
	}

	if err := challenge.Validate(); err != nil {
		return nil, err
	}

	return challenge, nil
}

// Validate checks if the Challenge has valid data.
// Returns an error if any field fails validation.
func (c *Challenge) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyChallengeID
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(c.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyCategory
	}
	if c.Difficulty < MinDifficulty || c.Difficulty > MaxDifficulty {
		return ErrInvalidDifficulty
	}
	return nil
}

// IsComplete reports whether a challenge row loaded from the store carries
// all fields the UI depends on. Rows failing this check are filtered from
// listings rather than surfaced as errors.
func (c *Challenge) IsComplete() bool {
	return c.Validate() == nil
}

// Subscription represents a user's subscription to a challenge.
// At most one subscription exists per (user, challenge) pair.
type Subscription struct {
	UserID       uuid.UUID `json:"user_id"`
	ChallengeID  uuid.UUID `json:"challenge_id"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

// ChallengeSummary aggregates catalog counts by category and difficulty.
type ChallengeSummary struct {
	TotalChallenges int            `json:"total_challenges"`
	ByCategory      map[string]int `json:"by_category"`
	ByDifficulty    map[int]int    `json:"by_difficulty"`
}

// Summarize builds a ChallengeSummary from a challenge list.
func Summarize(challenges []*Challenge) *ChallengeSummary {
	summary := &ChallengeSummary{
		TotalChallenges: len(challenges),
		ByCategory:      make(map[string]int),
		ByDifficulty:    map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	for _, c := range challenges {
		summary.ByCategory[c.Category]++
		if c.Difficulty >= MinDifficulty && c.Difficulty <= MaxDifficulty {
			summary.ByDifficulty[c.Difficulty]++
		}
	}

	return summary
}
