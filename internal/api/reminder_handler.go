package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/service"
)

// ReminderHandler handles reminder CRUD requests.
type ReminderHandler struct {
	reminderService *service.ReminderService
	validator       *validator.Validate
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
		validator:       validator.New(),
	}
}

// Create handles POST /reminders.
func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateReminderRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	days, err := domain.WeekdaysFromList(req.Days)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "days must be weekday numbers between 0 (Monday) and 6 (Sunday)")
		return
	}

	detail, err := h.reminderService.Create(r.Context(), userID, req.ChallengeID, req.TimeOfDay, days)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, NewReminderResponse(detail))
}

// Update handles PUT /reminders/{reminderID}.
func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := requireUserAndPathUUID(w, r, "reminderID")
	if !ok {
		return
	}

	var req UpdateReminderRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	update := service.ReminderUpdate{
		TimeOfDay: req.TimeOfDay,
		Enabled:   req.Enabled,
	}
	if req.Days != nil {
		days, err := domain.WeekdaysFromList(*req.Days)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "days must be weekday numbers between 0 (Monday) and 6 (Sunday)")
			return
		}
		update.Days = &days
	}

	detail, err := h.reminderService.Update(r.Context(), userID, reminderID, update)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, NewReminderResponse(detail))
}

// Delete handles DELETE /reminders/{reminderID}.
func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, reminderID, ok := requireUserAndPathUUID(w, r, "reminderID")
	if !ok {
		return
	}

	if err := h.reminderService.Delete(r.Context(), userID, reminderID); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, MessageResponse{Message: "Reminder deleted"})
}

// List handles GET /reminders.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	details, err := h.reminderService.ListByUser(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	responses := make([]ReminderResponse, 0, len(details))
	for _, detail := range details {
		responses = append(responses, NewReminderResponse(detail))
	}

	respond.JSON(w, r, http.StatusOK, responses)
}
