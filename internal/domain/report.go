package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Report validation errors.
var (
	ErrEmptyReportID   = errors.New("report ID cannot be empty")
	ErrEmptyReportText = errors.New("report text cannot be empty")
)

// WeeklyReport is an LLM-generated summary of one week of a user's
// kindness practice. At most one report exists per (user, start, end);
// regenerating replaces the stored text.
type WeeklyReport struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	ReportText string    `json:"report_text"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewWeeklyReport creates a report covering [startDate, endDate].
// Returns an error if validation fails.
func NewWeeklyReport(userID uuid.UUID, reportText string, startDate, endDate time.Time) (*WeeklyReport, error) {
	report := &WeeklyReport{
		ID:         uuid.New(),
		UserID:     userID,
		ReportText: reportText,
		StartDate:  NormalizeDate(startDate),
		EndDate:    NormalizeDate(endDate),
		CreatedAt:  time.Now().UTC(),
	}

	if err := report.Validate(); err != nil {
		return nil, err
	}

	return report, nil
}

// Validate checks if the WeeklyReport has valid data.
func (r *WeeklyReport) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReportID
	}
	if r.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if r.ReportText == "" {
		return ErrEmptyReportText
	}
	if r.StartDate.After(r.EndDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// WeekRange returns the inclusive seven-day range ending on the given day.
func WeekRange(end time.Time) (start, endDate time.Time) {
	endDate = NormalizeDate(end)
	start = endDate.AddDate(0, 0, -6)
	return start, endDate
}
