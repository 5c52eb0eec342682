package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Wall validation errors.
var (
	ErrEmptyPostID    = errors.New("wall post ID cannot be empty")
	ErrEmptyCommentID = errors.New("comment ID cannot be empty")
	ErrPostTooLong    = errors.New("wall post must be at most 2000 characters long")
	ErrCommentTooLong = errors.New("comment must be at most 500 characters long")
	ErrImageTooLarge  = errors.New("image attachment must be at most 2 MiB")
)

// MaxImageBytes bounds wall post image attachments. Images are stored as
// opaque bytes; any resizing happens client-side.
const MaxImageBytes = 2 << 20

// AnonymousDisplayName is shown in place of the author's username on
// anonymous posts and comments.
const AnonymousDisplayName = "Anonymous"

// WallPost is an entry on the kindness wall: a short story of a kind act,
// optionally with an image, optionally anonymous.
type WallPost struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"-"`
	Content     string    `json:"content"`
	ImageData   []byte    `json:"image_data,omitempty"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`

	// DisplayName is resolved at query time: the author's username, or
	// AnonymousDisplayName for anonymous posts.
	DisplayName  string `json:"display_name,omitempty"`
	LikeCount    int    `json:"like_count"`
	CommentCount int    `json:"comment_count"`
}

// NewWallPost creates a wall post for the given author.
// Returns an error if validation fails.
func NewWallPost(userID uuid.UUID, content string, imageData []byte, anonymous bool) (*WallPost, error) {
	post := &WallPost{
		ID:          uuid.New(),
		UserID:      userID,
		Content:     strings.TrimSpace(content),
		ImageData:   imageData,
		IsAnonymous: anonymous,
		CreatedAt:   time.Now().UTC(),
	}

	if err := post.Validate(); err != nil {
		return nil, err
	}

	return post, nil
}

// Validate checks if the WallPost has valid data.
func (p *WallPost) Validate() error {
	if p.ID == uuid.Nil {
		return ErrEmptyPostID
	}
	if p.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if p.Content == "" {
		return ErrEmptyContent
	}
	if len(p.Content) > 2000 {
		return ErrPostTooLong
	}
	if len(p.ImageData) > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// WallComment is a comment on a wall post, optionally anonymous.
type WallComment struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	UserID      uuid.UUID `json:"-"`
	Content     string    `json:"content"`
	IsAnonymous bool      `json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`

	DisplayName string `json:"display_name,omitempty"`
	LikeCount   int    `json:"like_count"`
}

// NewWallComment creates a comment on the given post.
// Returns an error if validation fails.
func NewWallComment(postID, userID uuid.UUID, content string, anonymous bool) (*WallComment, error) {
	comment := &WallComment{
		ID:          uuid.New(),
		PostID:      postID,
		UserID:      userID,
		Content:     strings.TrimSpace(content),
		IsAnonymous: anonymous,
		CreatedAt:   time.Now().UTC(),
	}

	if err := comment.Validate(); err != nil {
		return nil, err
	}

	return comment, nil
}

// Validate checks if the WallComment has valid data.
func (c *WallComment) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCommentID
	}
	if c.PostID == uuid.Nil {
		return ErrEmptyPostID
	}
	if c.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if c.Content == "" {
		return ErrEmptyContent
	}
	if len(c.Content) > 500 {
		return ErrCommentTooLong
	}
	return nil
}
