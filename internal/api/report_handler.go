package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/service"
)

// ReportHandler handles weekly report requests. Generation happens in the
// background, so a request returns 202 and the client polls the listing
// endpoints for the result.
type ReportHandler struct {
	reportService *service.ReportService
	validator     *validator.Validate
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		validator:     validator.New(),
	}
}

// Request handles POST /reports.
func (h *ReportHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ReportRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}
	if endDate.IsZero() {
		endDate = time.Now()
	}

	if err := h.reportService.RequestReport(r.Context(), userID, endDate); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusAccepted, MessageResponse{Message: "Report generation scheduled"})
}

// Latest handles GET /reports/latest.
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	report, err := h.reportService.Latest(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, report)
}

// List handles GET /reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	reports, err := h.reportService.ListByUser(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, reports)
}
