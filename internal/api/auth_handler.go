package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/service"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	// New accounts log straight in.
	_, tokens, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, AuthResponse{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, tokens, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, AuthResponse{
		UserID:       user.ID,
		Username:     user.Username,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tokens, err := h.userService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, tokens)
}
