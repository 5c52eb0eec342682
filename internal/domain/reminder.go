package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reminder validation errors.
var (
	ErrEmptyReminderID = errors.New("reminder ID cannot be empty")
	ErrInvalidTime     = errors.New("reminder time must be in HH:MM 24-hour format")
	ErrNoDaysSelected  = errors.New("reminder must be active on at least one day")
	ErrInvalidWeekday  = errors.New("weekday must be between 0 (Monday) and 6 (Sunday)")
)

// Weekdays is a bitset of the days a reminder fires on.
// Bit 0 is Monday, bit 6 is Sunday, matching the ordering the original
// desktop client used for its day toggles.
type Weekdays uint8

// EveryDay has all seven weekday bits set.
const EveryDay Weekdays = 0x7F

var weekdayNames = [7]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// WeekdaysFromList builds a bitset from day indexes (0=Monday .. 6=Sunday).
// Returns an error if any index is out of range.
func WeekdaysFromList(days []int) (Weekdays, error) {
	var w Weekdays
	for _, d := range days {
		if d < 0 || d > 6 {
			return 0, ErrInvalidWeekday
		}
		w |= 1 << uint(d)
	}
	return w, nil
}

// Contains reports whether the given day index (0=Monday) is set.
func (w Weekdays) Contains(day int) bool {
	if day < 0 || day > 6 {
		return false
	}
	return w&(1<<uint(day)) != 0
}

// List returns the set day indexes in ascending order.
func (w Weekdays) List() []int {
	days := make([]int, 0, 7)
	for d := 0; d < 7; d++ {
		if w.Contains(d) {
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return days
}

// String renders the set days using the localized day names,
// e.g. "周一, 周三, 周五".
func (w Weekdays) String() string {
	names := make([]string, 0, 7)
	for _, d := range w.List() {
		names = append(names, weekdayNames[d])
	}
	return strings.Join(names, ", ")
}

// Reminder schedules a recurring nudge to complete a challenge at a fixed
// time of day on selected weekdays.
type Reminder struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	ChallengeID uuid.UUID `json:"challenge_id"`
	// TimeOfDay is the local wall-clock firing time in "HH:MM" form.
	TimeOfDay string    `json:"time_of_day"`
	Days      Weekdays  `json:"days"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// ReminderDetail is a Reminder joined with its challenge title for display
// and for delivery messages.
type ReminderDetail struct {
	Reminder
	ChallengeTitle string `json:"challenge_title"`
}

// NewReminder creates an enabled reminder for the given user and challenge.
// A zero Days bitset defaults to every day, matching the original client.
// Returns an error if validation fails.
func NewReminder(userID, challengeID uuid.UUID, timeOfDay string, days Weekdays) (*Reminder, error) {
	if days == 0 {
		days = EveryDay
	}

	reminder := &Reminder{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		TimeOfDay:   timeOfDay,
		Days:        days,
		Enabled:     true,
		CreatedAt:   time.Now().UTC(),
	}

	if err := reminder.Validate(); err != nil {
		return nil, err
	}

	return reminder, nil
}

// Validate checks if the Reminder has valid data.
func (r *Reminder) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReminderID
	}
	if r.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if r.ChallengeID == uuid.Nil {
		return ErrEmptyChallengeID
	}
	if _, _, err := r.Clock(); err != nil {
		return err
	}
	if r.Days == 0 {
		return ErrNoDaysSelected
	}
	return nil
}

// Clock parses TimeOfDay into hour and minute components.
func (r *Reminder) Clock() (hour, minute int, err error) {
	if _, err := time.Parse("15:04", r.TimeOfDay); err != nil {
		return 0, 0, ErrInvalidTime
	}
	if _, err := fmt.Sscanf(r.TimeOfDay, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, ErrInvalidTime
	}
	return hour, minute, nil
}
