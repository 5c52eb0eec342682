package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// Auth

// RegisterRequest is the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the payload for the token refresh endpoint.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned on successful registration, login, and refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// Profile

// UpdateProfileRequest carries optional profile changes. Absent fields are
// left untouched.
type UpdateProfileRequest struct {
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarPath *string `json:"avatar_path,omitempty" validate:"omitempty,max=255"`
	Password   *string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}

// ConsentRequest is the payload for the AI consent endpoint.
type ConsentRequest struct {
	Granted *bool `json:"granted" validate:"required"`
}

// DeleteAccountRequest confirms an account deletion with the password.
type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// Challenges

// CreateChallengeRequest is the payload for adding a custom challenge.
type CreateChallengeRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description,omitempty" validate:"max=1000"`
	Category    string `json:"category" validate:"required,max=50"`
	Difficulty  int    `json:"difficulty" validate:"required,min=1,max=5"`
}

// Check-ins

// CheckInRequest is the payload for recording a check-in. An empty date
// means today.
type CheckInRequest struct {
	ChallengeID uuid.UUID `json:"challenge_id" validate:"required"`
	Date        string    `json:"date,omitempty"`
	Notes       string    `json:"notes,omitempty" validate:"max=2000"`
}

// UndoCheckInRequest is the payload for removing a check-in.
type UndoCheckInRequest struct {
	ChallengeID uuid.UUID `json:"challenge_id" validate:"required"`
	Date        string    `json:"date,omitempty"`
}

// Reminders

// CreateReminderRequest is the payload for creating a reminder. Days are
// indexes 0 (Monday) through 6 (Sunday); an empty list means every day.
type CreateReminderRequest struct {
	ChallengeID uuid.UUID `json:"challenge_id" validate:"required"`
	TimeOfDay   string    `json:"time_of_day" validate:"required"`
	Days        []int     `json:"days,omitempty" validate:"max=7"`
}

// UpdateReminderRequest carries optional reminder changes.
type UpdateReminderRequest struct {
	TimeOfDay *string `json:"time_of_day,omitempty"`
	Days      *[]int  `json:"days,omitempty" validate:"omitempty,max=7"`
	Enabled   *bool   `json:"enabled,omitempty"`
}

// Pet

// PetEventRequest is the payload for a virtual pet interaction.
type PetEventRequest struct {
	Type    string `json:"type" validate:"required,oneof=check_in reflection_added user_message"`
	Message string `json:"message,omitempty" validate:"max=2000"`
}

// Reports

// ReportRequest asks for a weekly report covering the week that ends on
// the given date. An empty date means today.
type ReportRequest struct {
	EndDate string `json:"end_date,omitempty"`
}

// Wall

// CreatePostRequest is the payload for publishing a wall post. ImageData
// is base64 in transit by virtue of the []byte JSON encoding.
type CreatePostRequest struct {
	Content     string `json:"content" validate:"required,max=2000"`
	ImageData   []byte `json:"image_data,omitempty"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// CreateCommentRequest is the payload for commenting on a wall post.
type CreateCommentRequest struct {
	Content     string `json:"content" validate:"required,max=500"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// Shared responses

// MessageResponse is a minimal acknowledgment body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ReminderResponse renders a reminder with its day list instead of the
// internal bitset.
type ReminderResponse struct {
	ID             uuid.UUID `json:"id"`
	ChallengeID    uuid.UUID `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	TimeOfDay      string    `json:"time_of_day"`
	Days           []int     `json:"days"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewReminderResponse converts a reminder detail to its wire form.
func NewReminderResponse(detail *domain.ReminderDetail) ReminderResponse {
	return ReminderResponse{
		ID:             detail.ID,
		ChallengeID:    detail.ChallengeID,
		ChallengeTitle: detail.ChallengeTitle,
		TimeOfDay:      detail.TimeOfDay,
		Days:           detail.Days.List(),
		Enabled:        detail.Enabled,
		CreatedAt:      detail.CreatedAt,
	}
}
