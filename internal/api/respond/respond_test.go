package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTraceIDAssignsUniqueIDs(t *testing.T) {
	ctx1 := WithTraceID(context.Background())
	ctx2 := WithTraceID(context.Background())

	assert.NotEmpty(t, TraceID(ctx1))
	assert.NotEmpty(t, TraceID(ctx2))
	assert.NotEqual(t, TraceID(ctx1), TraceID(ctx2))
}

func TestTraceIDMissing(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}

func TestJSONWritesStatusAndBody(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	JSON(w, r, http.StatusCreated, map[string]string{"name": "kind"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "kind", body["name"])
}

func TestErrorIncludesTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)
	r = r.WithContext(WithTraceID(r.Context()))

	Error(w, r, http.StatusNotFound, "Not found")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Not found", body["error"])
	assert.Equal(t, TraceID(r.Context()), body["trace_id"])
}

func TestErrorOmitsEmptyTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	Error(w, r, http.StatusBadRequest, "Bad input")

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body, "trace_id")
}

func TestErrorAndLogHidesInternalError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/test", nil)

	ErrorAndLog(w, r, http.StatusInternalServerError, "An unexpected error occurred",
		errors.New("dial tcp: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred", body["error"])
}

func TestDecode(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"name":"kind"}`))

	var payload struct {
		Name string `json:"name"`
	}
	require.NoError(t, Decode(r, &payload))
	assert.Equal(t, "kind", payload.Name)

	bad := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(`{`))
	assert.Error(t, Decode(bad, &payload))
}
