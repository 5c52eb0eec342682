package api

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/service"
)

// ProgressHandler handles check-in and statistics requests. A successful
// check-in also asks the virtual pet for a celebratory reaction, which is
// returned alongside the record.
type ProgressHandler struct {
	progressService  *service.ProgressService
	challengeService *service.ChallengeService
	petService       *service.PetService
	validator        *validator.Validate
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(
	progressService *service.ProgressService,
	challengeService *service.ChallengeService,
	petService *service.PetService,
) *ProgressHandler {
	return &ProgressHandler{
		progressService:  progressService,
		challengeService: challengeService,
		petService:       petService,
		validator:        validator.New(),
	}
}

// CheckInResponse pairs the stored check-in with the pet's reaction.
type CheckInResponse struct {
	CheckIn     *domain.CheckIn     `json:"check_in"`
	PetReaction *domain.PetReaction `json:"pet_reaction,omitempty"`
}

// CheckIn handles POST /check-ins.
func (h *ProgressHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CheckInRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	checkIn, err := h.progressService.CheckIn(r.Context(), userID, req.ChallengeID, date, req.Notes)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, CheckInResponse{
		CheckIn:     checkIn,
		PetReaction: h.petReaction(r.Context(), userID, req.ChallengeID),
	})
}

// petReaction asks the pet to celebrate a check-in. Any failure means no
// reaction, never a failed check-in.
func (h *ProgressHandler) petReaction(
	ctx context.Context,
	userID uuid.UUID,
	challengeID uuid.UUID,
) *domain.PetReaction {
	if h.petService == nil {
		return nil
	}

	event := domain.PetEvent{UserID: userID, Type: domain.PetEventCheckIn}
	if challenge, err := h.challengeService.Get(ctx, challengeID); err == nil {
		event.Message = challenge.Title
	}

	reaction, err := h.petService.React(ctx, event)
	if err != nil {
		return nil
	}
	return reaction
}

// UndoCheckIn handles POST /check-ins/undo.
func (h *ProgressHandler) UndoCheckIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UndoCheckInRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	date, err := parseOptionalDate(req.Date)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	if err := h.progressService.UndoCheckIn(r.Context(), userID, req.ChallengeID, date); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "Check-in removed"})
}

// List handles GET /check-ins with optional from/to query parameters.
func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	checkIns, err := h.progressService.ListByUser(r.Context(), userID, dateRange)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, checkIns)
}

// ListByChallenge handles GET /challenges/{challengeID}/check-ins.
func (h *ProgressHandler) ListByChallenge(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := requireUserAndPathUUID(w, r, "challengeID")
	if !ok {
		return
	}

	dateRange, err := parseDateRange(r)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	checkIns, err := h.progressService.ListByChallenge(r.Context(), userID, challengeID, dateRange)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, checkIns)
}

// ChallengeStats handles GET /challenges/{challengeID}/stats.
func (h *ProgressHandler) ChallengeStats(w http.ResponseWriter, r *http.Request) {
	userID, challengeID, ok := requireUserAndPathUUID(w, r, "challengeID")
	if !ok {
		return
	}

	stats, err := h.progressService.ChallengeStats(r.Context(), userID, challengeID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, stats)
}

// UserStats handles GET /users/me/stats.
func (h *ProgressHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.progressService.UserStats(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, stats)
}
