package generation

import (
	"context"
	"time"

	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// PetGenerator defines the interface for producing virtual pet reactions.
// It serves as the boundary between the application core and the external
// LLM service.
type PetGenerator interface {
	// GenerateReaction produces the pet's response to an event, given the
	// recent conversation history for context. Implementations must not
	// mutate the history slice.
	GenerateReaction(
		ctx context.Context,
		event domain.PetEvent,
		history []domain.ConversationMessage,
	) (*domain.PetReaction, error)
}

// ReportStats summarizes a user's week of activity for report generation.
type ReportStats struct {
	Username       string
	StartDate      time.Time
	EndDate        time.Time
	TotalCheckIns  int
	CurrentStreak  int
	CategoryCounts map[string]int
}

// ReportGenerator defines the interface for producing weekly report prose.
type ReportGenerator interface {
	// GenerateWeeklyReport produces an encouraging summary of the user's
	// week from the collected statistics.
	GenerateWeeklyReport(ctx context.Context, stats ReportStats) (string, error)
}
