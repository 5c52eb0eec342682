package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yuexizhang/kindness-companion/internal/api/middleware"
	"github.com/yuexizhang/kindness-companion/internal/api/respond"
	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/store"
)

// requireUserID extracts the authenticated user ID or writes a 401.
// Returns false when the response has already been written.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(r)
	if !ok || userID == uuid.Nil {
		respond.Error(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.ErrInvalidID
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidID
	}
	return id, nil
}

// requireUserAndPathUUID extracts both the authenticated user ID and a UUID
// path parameter, writing an error response if either fails.
func requireUserAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
) (userID, pathID uuid.UUID, ok bool) {
	userID, ok = requireUserID(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	pathID, err := getPathUUID(r, paramName)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "Invalid "+paramName)
		return uuid.Nil, uuid.Nil, false
	}

	return userID, pathID, true
}

// parseOptionalDate parses a YYYY-MM-DD query or body value. An empty
// string yields the zero time, which downstream code treats as "today"
// or "unbounded" depending on the operation.
func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return domain.ParseDate(value)
}

// parseDateRange reads optional "from" and "to" query parameters.
func parseDateRange(r *http.Request) (store.DateRange, error) {
	start, err := parseOptionalDate(r.URL.Query().Get("from"))
	if err != nil {
		return store.DateRange{}, err
	}
	end, err := parseOptionalDate(r.URL.Query().Get("to"))
	if err != nil {
		return store.DateRange{}, err
	}
	return store.DateRange{Start: start, End: end}, nil
}

// parsePage reads optional "limit" and "offset" query parameters, leaving
// zero values for the store defaults when absent or malformed.
func parsePage(r *http.Request) store.Page {
	page := store.Page{}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		page.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		page.Offset = offset
	}
	return page
}
