package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// User validation errors.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrUsernameTooLong     = errors.New("username must be at most 32 characters long")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// DefaultAvatarPath is assigned to newly registered users until they pick
// their own avatar. The value is a frontend resource path; the server treats
// it as opaque.
const DefaultAvatarPath = ":/images/profilePicture.png"

// User represents a registered user of the kindness companion application.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword string    `json:"-"` // Never expose the password hash in JSON
	Email          string    `json:"email,omitempty"`
	Bio            string    `json:"bio"`
	AvatarPath     string    `json:"avatar_path"`
	// AIConsent records whether the user allows their data to be sent to
	// the external LLM provider. Nil means the user has not decided yet.
	AIConsent   *bool      `json:"ai_consent,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// NewUser creates a new User with the given username, password, and optional
// email. It generates a new UUID for the user ID, assigns the default bio and
// avatar, and sets the creation/update timestamps. Returns an error if
// validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(username, password, email string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:         uuid.New(),
		Username:   strings.TrimSpace(username),
		Password:   password,
		Email:      strings.TrimSpace(email),
		Bio:        "",
		AvatarPath: DefaultAvatarPath,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}
	if utf8.RuneCountInString(u.Username) > 32 {
		return ErrUsernameTooLong
	}

	// Email is optional, but when present it must look like an address.
	if u.Email != "" && !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if err := ValidatePassword(u.Password); err != nil {
			return err
		}
	} else if u.HashedPassword == "" {
		// When no plaintext password is provided, the user must already
		// carry a hashed password (existing users loaded from the store).
		return ErrEmptyPassword
	}

	return nil
}

// ConsentGranted reports whether the user has explicitly allowed AI features.
func (u *User) ConsentGranted() bool {
	return u.AIConsent != nil && *u.AIConsent
}

// ValidatePassword checks a plaintext password against the length policy.
// The upper bound is bcrypt's practical 72-byte limit.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	atIndex := strings.Index(email, "@")
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 { // minimum would be "a.b"
		return false
	}

	dotIndex := strings.Index(domainPart, ".")
	return dotIndex > 0 && dotIndex < len(domainPart)-1
}
