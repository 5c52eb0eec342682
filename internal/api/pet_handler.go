package api

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/service"
)

// PetHandler handles virtual pet interaction requests.
type PetHandler struct {
	petService *service.PetService
	validator  *validator.Validate
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(petService *service.PetService) *PetHandler {
	return &PetHandler{
		petService: petService,
		validator:  validator.New(),
	}
}

// React handles POST /pet/events.
func (h *PetHandler) React(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req PetEventRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	reaction, err := h.petService.React(r.Context(), domain.PetEvent{
		UserID:  userID,
		Type:    domain.PetEventType(req.Type),
		Message: req.Message,
	})
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, reaction)
}

// History handles GET /pet/history with an optional limit query parameter.
func (h *PetHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respond.Error(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	messages, err := h.petService.History(r.Context(), userID, limit)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, messages)
}
