package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/yuexizhang/kindness-companion/internal/domain"
)

// Page bounds a paginated listing.
type Page struct {
	Limit  int
	Offset int
}

// WallStore defines the interface for kindness wall persistence:
// posts, comments, and their likes.
type WallStore interface {
	// CreatePost saves a wall post.
	CreatePost(ctx context.Context, post *domain.WallPost) error

	// GetPost retrieves a single post with its resolved display name and
	// like/comment counts. Returns ErrPostNotFound if it does not exist.
	GetPost(ctx context.Context, id uuid.UUID) (*domain.WallPost, error)

	// ListPosts retrieves posts newest first with resolved display names
	// and like/comment counts.
	ListPosts(ctx context.Context, page Page) ([]*domain.WallPost, error)

	// ListPostsByUser retrieves one user's posts newest first.
	ListPostsByUser(ctx context.Context, userID uuid.UUID, page Page) ([]*domain.WallPost, error)

	// CountPosts returns the total number of posts on the wall.
	CountPosts(ctx context.Context) (int, error)

	// DeletePost removes a post owned by the given user, cascading to its
	// comments and likes. Returns ErrPostNotFound if no post matches both
	// the ID and the owner.
	DeletePost(ctx context.Context, id, userID uuid.UUID) error

	// LikePost records a like. Returns ErrAlreadyLiked on repeats and
	// ErrPostNotFound if the post does not exist.
	LikePost(ctx context.Context, postID, userID uuid.UUID) error

	// UnlikePost removes a like. Returns ErrNotFound if no like exists.
	UnlikePost(ctx context.Context, postID, userID uuid.UUID) error

	// CreateComment saves a comment on a post.
	// Returns ErrPostNotFound if the post does not exist.
	CreateComment(ctx context.Context, comment *domain.WallComment) error

	// ListComments retrieves a post's comments oldest first with resolved
	// display names and like counts.
	ListComments(ctx context.Context, postID uuid.UUID, page Page) ([]*domain.WallComment, error)

	// DeleteComment removes a comment owned by the given user.
	// Returns ErrCommentNotFound if no comment matches both the ID and
	// the owner.
	DeleteComment(ctx context.Context, id, userID uuid.UUID) error

	// LikeComment records a like on a comment. Returns ErrAlreadyLiked on
	// repeats and ErrCommentNotFound if the comment does not exist.
	LikeComment(ctx context.Context, commentID, userID uuid.UUID) error

	// UnlikeComment removes a like from a comment.
	// Returns ErrNotFound if no like exists.
	UnlikeComment(ctx context.Context, commentID, userID uuid.UUID) error

	// WithTx returns a new WallStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) WallStore
}
