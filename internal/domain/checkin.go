package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Check-in validation errors.
var (
	ErrEmptyCheckInID   = errors.New("check-in ID cannot be empty")
	ErrFutureCheckIn    = errors.New("check-in date cannot be in the future")
	ErrNotesTooLong     = errors.New("check-in notes must be at most 2000 characters long")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// CheckIn records that a user completed a challenge on a given calendar day.
// The (user, challenge, date) triple is unique: checking in twice for the
// same day is rejected by the store.
type CheckIn struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ChallengeID uuid.UUID `json:"challenge_id"`
	// Date is the calendar day of the check-in, normalized to midnight UTC.
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckInDetail is a CheckIn joined with its challenge's display fields,
// used by cross-challenge listings.
type CheckInDetail struct {
	CheckIn
	ChallengeTitle      string `json:"challenge_title"`
	ChallengeCategory   string `json:"challenge_category"`
	ChallengeDifficulty int    `json:"challenge_difficulty"`
}

// NewCheckIn creates a check-in for the given user, challenge, and day.
// A zero date means today. Returns an error if validation fails.
func NewCheckIn(userID, challengeID uuid.UUID, date time.Time, notes string) (*CheckIn, error) {
	if date.IsZero() {
		date = time.Now().UTC()
	}

	checkIn := &CheckIn{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		Date:        NormalizeDate(date),
		Notes:       notes,
		CreatedAt:   time.Now().UTC(),
	}

	if err := checkIn.Validate(); err != nil {
		return nil, err
	}

	return checkIn, nil
}

// Validate checks if the CheckIn has valid data.
func (ci *CheckIn) Validate() error {
	if ci.ID == uuid.Nil {
		return ErrEmptyCheckInID
	}
	if ci.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if ci.ChallengeID == uuid.Nil {
		return ErrEmptyChallengeID
	}
	if ci.Date.After(NormalizeDate(time.Now().UTC())) {
		return ErrFutureCheckIn
	}
	if len(ci.Notes) > 2000 {
		return ErrNotesTooLong
	}
	return nil
}

// NormalizeDate truncates a timestamp to its calendar day in UTC.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders a date in YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
