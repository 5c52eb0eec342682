package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/service"
)

// WallHandler handles kindness wall posts, comments and likes.
type WallHandler struct {
	wallService *service.WallService
	validator   *validator.Validate
}

// NewWallHandler creates a new WallHandler.
func NewWallHandler(wallService *service.WallService) *WallHandler {
	return &WallHandler{
		wallService: wallService,
		validator:   validator.New(),
	}
}

// CreatePost handles POST /wall/posts.
func (h *WallHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	post, err := h.wallService.CreatePost(r.Context(), userID, req.Content, req.ImageData, req.IsAnonymous)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, post)
}

// GetPost handles GET /wall/posts/{postID}.
func (h *WallHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := getPathUUID(r, "postID")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := h.wallService.GetPost(r.Context(), postID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, post)
}

// ListPosts handles GET /wall/posts with limit/offset pagination.
func (h *WallHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.wallService.ListPosts(r.Context(), parsePage(r))
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, page)
}

// ListMyPosts handles GET /wall/posts/mine.
func (h *WallHandler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	posts, err := h.wallService.ListPostsByUser(r.Context(), userID, parsePage(r))
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, posts)
}

// DeletePost handles DELETE /wall/posts/{postID}.
func (h *WallHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := requireUserAndPathUUID(w, r, "postID")
	if !ok {
		return
	}

	if err := h.wallService.DeletePost(r.Context(), postID, userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "Post deleted"})
}

// LikePost handles POST /wall/posts/{postID}/like.
func (h *WallHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := requireUserAndPathUUID(w, r, "postID")
	if !ok {
		return
	}

	if err := h.wallService.LikePost(r.Context(), postID, userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, MessageResponse{Message: "Post liked"})
}

// UnlikePost handles DELETE /wall/posts/{postID}/like.
func (h *WallHandler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := requireUserAndPathUUID(w, r, "postID")
	if !ok {
		return
	}

	if err := h.wallService.UnlikePost(r.Context(), postID, userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "Like removed"})
}

// CreateComment handles POST /wall/posts/{postID}/comments.
func (h *WallHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, postID, ok := requireUserAndPathUUID(w, r, "postID")
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment, err := h.wallService.CreateComment(r.Context(), postID, userID, req.Content, req.IsAnonymous)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, comment)
}

// ListComments handles GET /wall/posts/{postID}/comments.
func (h *WallHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := getPathUUID(r, "postID")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid post ID")
		return
	}

	comments, err := h.wallService.ListComments(r.Context(), postID, parsePage(r))
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, comments)
}

// DeleteComment handles DELETE /wall/comments/{commentID}.
func (h *WallHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := requireUserAndPathUUID(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.wallService.DeleteComment(r.Context(), commentID, userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "Comment deleted"})
}

// LikeComment handles POST /wall/comments/{commentID}/like.
func (h *WallHandler) LikeComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := requireUserAndPathUUID(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.wallService.LikeComment(r.Context(), commentID, userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, MessageResponse{Message: "Comment liked"})
}

// UnlikeComment handles DELETE /wall/comments/{commentID}/like.
func (h *WallHandler) UnlikeComment(w http.ResponseWriter, r *http.Request) {
	userID, commentID, ok := requireUserAndPathUUID(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.wallService.UnlikeComment(r.Context(), commentID, userID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "Like removed"})
}
