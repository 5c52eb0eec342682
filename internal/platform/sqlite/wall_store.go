package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/platform/logger"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// defaultPageLimit bounds listings when the caller passes a zero page.
const defaultPageLimit = 20

// SQLiteWallStore implements the store.WallStore interface using a SQLite
// database as the storage backend.
type SQLiteWallStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewWallStore creates a SQLite implementation of the WallStore interface.
// If logger is nil, the default logger is used.
func NewWallStore(db store.DBTX, logger *slog.Logger) *SQLiteWallStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteWallStore{
		db:     db,
		logger: logger.With(slog.String("component", "wall_store")),
	}
}

var _ store.WallStore = (*SQLiteWallStore)(nil)

// WithTx implements store.WallStore.WithTx
func (s *SQLiteWallStore) WithTx(tx *sql.Tx) store.WallStore {
	return &SQLiteWallStore{db: tx, logger: s.logger}
}

// postQuery resolves the display name and counts in one pass. Anonymous
// posts never leak the author's username.
const postQuery = `
	SELECT p.id, p.user_id, p.content, p.image_data, p.is_anonymous, p.created_at,
	       CASE WHEN p.is_anonymous THEN ? ELSE u.username END AS display_name,
	       (SELECT COUNT(1) FROM wall_post_likes l WHERE l.post_id = p.id) AS like_count,
	       (SELECT COUNT(1) FROM wall_comments wc WHERE wc.post_id = p.id) AS comment_count
	FROM wall_posts p
	JOIN users u ON u.id = p.user_id
`

// CreatePost implements store.WallStore.CreatePost
func (s *SQLiteWallStore) CreatePost(ctx context.Context, post *domain.WallPost) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := post.Validate(); err != nil {
		log.Warn("wall post validation failed during create",
			slog.String("error", err.Error()),
			slog.String("post_id", post.ID.String()))
		return err
	}

	query := `
		INSERT INTO wall_posts (id, user_id, content, image_data, is_anonymous, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		post.ID.String(),
		post.UserID.String(),
		post.Content,
		post.ImageData,
		post.IsAnonymous,
		toMillis(post.CreatedAt),
	)
	if err != nil {
		log.Error("failed to create wall post",
			slog.String("error", err.Error()),
			slog.String("post_id", post.ID.String()))
		return MapError(err)
	}

	log.Info("wall post created",
		slog.String("post_id", post.ID.String()),
		slog.Bool("anonymous", post.IsAnonymous))
	return nil
}

// GetPost implements store.WallStore.GetPost
func (s *SQLiteWallStore) GetPost(ctx context.Context, id uuid.UUID) (*domain.WallPost, error) {
	row := s.db.QueryRowContext(ctx, postQuery+` WHERE p.id = ?`,
		domain.AnonymousDisplayName, id.String())
	post, err := scanWallPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPostNotFound
		}
		return nil, MapError(err)
	}
	return post, nil
}

// ListPosts implements store.WallStore.ListPosts
func (s *SQLiteWallStore) ListPosts(ctx context.Context, page store.Page) ([]*domain.WallPost, error) {
	limit, offset := pageBounds(page)
	rows, err := s.db.QueryContext(ctx,
		postQuery+` ORDER BY p.created_at DESC LIMIT ? OFFSET ?`,
		domain.AnonymousDisplayName, limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectWallPosts(rows)
}

// ListPostsByUser implements store.WallStore.ListPostsByUser
func (s *SQLiteWallStore) ListPostsByUser(ctx context.Context, userID uuid.UUID, page store.Page) ([]*domain.WallPost, error) {
	limit, offset := pageBounds(page)
	rows, err := s.db.QueryContext(ctx,
		postQuery+` WHERE p.user_id = ? ORDER BY p.created_at DESC LIMIT ? OFFSET ?`,
		domain.AnonymousDisplayName, userID.String(), limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	return collectWallPosts(rows)
}

// CountPosts implements store.WallStore.CountPosts
func (s *SQLiteWallStore) CountPosts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM wall_posts`).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// DeletePost implements store.WallStore.DeletePost
// The owner check is part of the DELETE so another user's post ID reads the
// same as a missing post.
func (s *SQLiteWallStore) DeletePost(ctx context.Context, id, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM wall_posts WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPostNotFound)
}

// LikePost implements store.WallStore.LikePost
func (s *SQLiteWallStore) LikePost(ctx context.Context, postID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wall_post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID.String(), userID.String(), toMillis(time.Now().UTC()))
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrAlreadyLiked, err)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrPostNotFound, err)
		}
		return MapError(err)
	}
	return nil
}

// UnlikePost implements store.WallStore.UnlikePost
func (s *SQLiteWallStore) UnlikePost(ctx context.Context, postID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM wall_post_likes WHERE post_id = ? AND user_id = ?`,
		postID.String(), userID.String())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotFound)
}

// CreateComment implements store.WallStore.CreateComment
func (s *SQLiteWallStore) CreateComment(ctx context.Context, comment *domain.WallComment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := comment.Validate(); err != nil {
		log.Warn("comment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return err
	}

	query := `
		INSERT INTO wall_comments (id, post_id, user_id, content, is_anonymous, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		comment.ID.String(),
		comment.PostID.String(),
		comment.UserID.String(),
		comment.Content,
		comment.IsAnonymous,
		toMillis(comment.CreatedAt),
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrPostNotFound, err)
		}
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.String("comment_id", comment.ID.String()))
		return MapError(err)
	}
	return nil
}

// ListComments implements store.WallStore.ListComments
func (s *SQLiteWallStore) ListComments(ctx context.Context, postID uuid.UUID, page store.Page) ([]*domain.WallComment, error) {
	query := `
		SELECT wc.id, wc.post_id, wc.user_id, wc.content, wc.is_anonymous, wc.created_at,
		       CASE WHEN wc.is_anonymous THEN ? ELSE u.username END AS display_name,
		       (SELECT COUNT(1) FROM wall_comment_likes l WHERE l.comment_id = wc.id) AS like_count
		FROM wall_comments wc
		JOIN users u ON u.id = wc.user_id
		WHERE wc.post_id = ?
		ORDER BY wc.created_at
		LIMIT ? OFFSET ?
	`
	limit, offset := pageBounds(page)
	rows, err := s.db.QueryContext(ctx, query,
		domain.AnonymousDisplayName, postID.String(), limit, offset)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var comments []*domain.WallComment
	for rows.Next() {
		var (
			comment   domain.WallComment
			id        string
			pid       string
			uid       string
			createdAt int64
		)
		err := rows.Scan(
			&id, &pid, &uid,
			&comment.Content, &comment.IsAnonymous, &createdAt,
			&comment.DisplayName, &comment.LikeCount,
		)
		if err != nil {
			return nil, MapError(err)
		}
		if comment.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: malformed comment ID %q", store.ErrInvalidEntity, id)
		}
		if comment.PostID, err = uuid.Parse(pid); err != nil {
			return nil, fmt.Errorf("%w: malformed post ID %q", store.ErrInvalidEntity, pid)
		}
		if comment.UserID, err = uuid.Parse(uid); err != nil {
			return nil, fmt.Errorf("%w: malformed user ID %q", store.ErrInvalidEntity, uid)
		}
		comment.CreatedAt = fromMillis(createdAt)
		comments = append(comments, &comment)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return comments, nil
}

// DeleteComment implements store.WallStore.DeleteComment
func (s *SQLiteWallStore) DeleteComment(ctx context.Context, id, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM wall_comments WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrCommentNotFound)
}

// LikeComment implements store.WallStore.LikeComment
func (s *SQLiteWallStore) LikeComment(ctx context.Context, commentID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wall_comment_likes (comment_id, user_id, created_at) VALUES (?, ?, ?)`,
		commentID.String(), userID.String(), toMillis(time.Now().UTC()))
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrAlreadyLiked, err)
		}
		if IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrCommentNotFound, err)
		}
		return MapError(err)
	}
	return nil
}

// UnlikeComment implements store.WallStore.UnlikeComment
func (s *SQLiteWallStore) UnlikeComment(ctx context.Context, commentID, userID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM wall_comment_likes WHERE comment_id = ? AND user_id = ?`,
		commentID.String(), userID.String())
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotFound)
}

func pageBounds(page store.Page) (limit, offset int) {
	limit = page.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	offset = page.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanWallPost(row rowScanner) (*domain.WallPost, error) {
	var (
		post      domain.WallPost
		id        string
		uid       string
		imageData []byte
		createdAt int64
	)
	err := row.Scan(
		&id, &uid, &post.Content, &imageData, &post.IsAnonymous, &createdAt,
		&post.DisplayName, &post.LikeCount, &post.CommentCount,
	)
	if err != nil {
		return nil, err
	}

	if post.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed post ID %q", store.ErrInvalidEntity, id)
	}
	if post.UserID, err = uuid.Parse(uid); err != nil {
		return nil, fmt.Errorf("%w: malformed user ID %q", store.ErrInvalidEntity, uid)
	}
	post.ImageData = imageData
	post.CreatedAt = fromMillis(createdAt)
	return &post, nil
}

func collectWallPosts(rows *sql.Rows) ([]*domain.WallPost, error) {
	var posts []*domain.WallPost
	for rows.Next() {
		post, err := scanWallPost(rows)
		if err != nil {
			return nil, MapError(err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return posts, nil
}
