package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// WallPage is one page of the kindness wall with the overall post count
// for pagination controls.
type WallPage struct {
	Posts  []*domain.WallPost `json:"posts"`
	Total  int                `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// WallService manages the kindness wall: posts, comments, and likes.
// Anonymity is resolved at the store layer, so service callers only ever
// see display names.
type WallService struct {
	wallStore store.WallStore
	logger    *slog.Logger
}

// NewWallService creates a new WallService.
func NewWallService(wallStore store.WallStore, logger *slog.Logger) *WallService {
	return &WallService{
		wallStore: wallStore,
		logger:    logger.With(slog.String("component", "wall_service")),
	}
}

// CreatePost publishes a post to the wall, optionally anonymous and with an
// optional image attachment.
func (s *WallService) CreatePost(
	ctx context.Context,
	userID uuid.UUID,
	content string,
	imageData []byte,
	anonymous bool,
) (*domain.WallPost, error) {
	post, err := domain.NewWallPost(userID, content, imageData, anonymous)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if err := s.wallStore.CreatePost(ctx, post); err != nil {
		s.logger.Error("failed to save wall post", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	// Reload for the resolved display name and zeroed counters.
	created, err := s.wallStore.GetPost(ctx, post.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created post: %w", err)
	}

	s.logger.Info("wall post created",
		"post_id", post.ID,
		"user_id", userID,
		"anonymous", anonymous)
	return created, nil
}

// GetPost retrieves a single post with its counts.
func (s *WallService) GetPost(ctx context.Context, postID uuid.UUID) (*domain.WallPost, error) {
	post, err := s.wallStore.GetPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve post: %w", err)
	}
	return post, nil
}

// ListPosts retrieves one page of the wall, newest first.
func (s *WallService) ListPosts(ctx context.Context, page store.Page) (*WallPage, error) {
	posts, err := s.wallStore.ListPosts(ctx, page)
	if err != nil {
		s.logger.Error("failed to list wall posts", "error", err)
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	total, err := s.wallStore.CountPosts(ctx)
	if err != nil {
		s.logger.Error("failed to count wall posts", "error", err)
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &WallPage{Posts: posts, Total: total, Limit: page.Limit, Offset: page.Offset}, nil
}

// ListPostsByUser retrieves one page of the user's own posts, newest first.
// Anonymous posts are included since the author is the one asking.
func (s *WallService) ListPostsByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.WallPost, error) {
	posts, err := s.wallStore.ListPostsByUser(ctx, userID, page)
	if err != nil {
		s.logger.Error("failed to list user's wall posts", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes one of the user's own posts with its comments and
// likes. Returns store.ErrPostNotFound when the post does not exist or is
// owned by someone else; the two cases are indistinguishable to callers.
func (s *WallService) DeletePost(ctx context.Context, postID, userID uuid.UUID) error {
	if err := s.wallStore.DeletePost(ctx, postID, userID); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.logger.Info("wall post deleted", "post_id", postID, "user_id", userID)
	return nil
}

// LikePost records a like. Returns store.ErrAlreadyLiked on repeats.
func (s *WallService) LikePost(ctx context.Context, postID, userID uuid.UUID) error {
	if err := s.wallStore.LikePost(ctx, postID, userID); err != nil {
		return fmt.Errorf("failed to like post: %w", err)
	}
	return nil
}

// UnlikePost removes a like. Returns store.ErrNotFound if no like exists.
func (s *WallService) UnlikePost(ctx context.Context, postID, userID uuid.UUID) error {
	if err := s.wallStore.UnlikePost(ctx, postID, userID); err != nil {
		return fmt.Errorf("failed to unlike post: %w", err)
	}
	return nil
}

// CreateComment adds a comment to a post, optionally anonymous.
// Returns store.ErrPostNotFound when the post does not exist.
func (s *WallService) CreateComment(
	ctx context.Context,
	postID, userID uuid.UUID,
	content string,
	anonymous bool,
) (*domain.WallComment, error) {
	comment, err := domain.NewWallComment(postID, userID, content, anonymous)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if err := s.wallStore.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to save comment",
			"error", err, "post_id", postID, "user_id", userID)
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	s.logger.Info("comment created",
		"comment_id", comment.ID,
		"post_id", postID,
		"user_id", userID)
	return comment, nil
}

// ListComments retrieves a post's comments oldest first.
func (s *WallService) ListComments(ctx context.Context, postID uuid.UUID, page store.Page) ([]*domain.WallComment, error) {
	comments, err := s.wallStore.ListComments(ctx, postID, page)
	if err != nil {
		s.logger.Error("failed to list comments", "error", err, "post_id", postID)
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes one of the user's own comments.
func (s *WallService) DeleteComment(ctx context.Context, commentID, userID uuid.UUID) error {
	if err := s.wallStore.DeleteComment(ctx, commentID, userID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	s.logger.Info("comment deleted", "comment_id", commentID, "user_id", userID)
	return nil
}

// LikeComment records a like on a comment.
func (s *WallService) LikeComment(ctx context.Context, commentID, userID uuid.UUID) error {
	if err := s.wallStore.LikeComment(ctx, commentID, userID); err != nil {
		return fmt.Errorf("failed to like comment: %w", err)
	}
	return nil
}

// UnlikeComment removes a like from a comment.
func (s *WallService) UnlikeComment(ctx context.Context, commentID, userID uuid.UUID) error {
	if err := s.wallStore.UnlikeComment(ctx, commentID, userID); err != nil {
		return fmt.Errorf("failed to unlike comment: %w", err)
	}
	return nil
}
