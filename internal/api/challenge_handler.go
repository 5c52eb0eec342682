package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/service"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// ChallengeHandler handles challenge catalog and subscription requests.
type ChallengeHandler struct {
	challengeService *service.ChallengeService
	validator        *validator.Validate
}

// NewChallengeHandler creates a new ChallengeHandler.
func NewChallengeHandler(challengeService *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
		validator:        validator.New(),
	}
}

// Create handles POST /challenges, adding a custom challenge to the catalog.
func (h *ChallengeHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	var req CreateChallengeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	challenge, err := h.challengeService.Create(r.Context(), req.Title, req.Description, req.Category, req.Difficulty)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, challenge)
}

// List handles GET /challenges with optional category and difficulty
// query filters.
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.ChallengeFilter{
		Category: r.URL.Query().Get("category"),
	}
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		difficulty, err := strconv.Atoi(raw)
		if err != nil || difficulty < 1 || difficulty > 5 {
			respond.Error(w, r, http.StatusBadRequest, "difficulty must be between 1 and 5")
			return
		}
		filter.Difficulty = difficulty
	}

	challenges, err := h.challengeService.List(r.Context(), filter)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, challenges)
}

// Get handles GET /challenges/{challengeID}.
func (h *ChallengeHandler) Get(w http.ResponseWriter, r *http.Request) {
	challengeID, err := getPathUUID(r, "challengeID")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid challenge ID")
		return
	}

	challenge, err := h.challengeService.Get(r.Context(), challengeID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, challenge)
}

// Categories handles GET /challenges/categories.
func (h *ChallengeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.challengeService.Categories(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, categories)
}

// Summary handles GET /challenges/summary.
func (h *ChallengeHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.challengeService.Summary(r.Context())
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, summary)
}

// Subscribe handles POST /challenges/{challengeID}/subscribe.
func (h *ChallengeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := requireUserAndPathUUID(w, r, "challengeID")
	if !ok {
		return
	}

	if err := h.challengeService.Subscribe(r.Context(), userID, challengeID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, MessageResponse{Message: "Subscribed"})
}

// Unsubscribe handles DELETE /challenges/{challengeID}/subscribe.
func (h *ChallengeHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := requireUserAndPathUUID(w, r, "challengeID")
	if !ok {
		return
	}

	if err := h.challengeService.Unsubscribe(r.Context(), userID, challengeID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "Unsubscribed"})
}

// ListSubscribed handles GET /challenges/subscribed.
func (h *ChallengeHandler) ListSubscribed(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	challenges, err := h.challengeService.ListSubscribed(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, challenges)
}
