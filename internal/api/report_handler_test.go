package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
)

func TestRequestReportAccepted(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")

	rec := env.do(t, http.MethodPost, "/api/reports", tokens.AccessToken, ReportRequest{})
	assert.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
}

func TestRequestReportInvalidDate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")

	rec := env.do(t, http.MethodPost, "/api/reports", tokens.AccessToken, ReportRequest{
		EndDate: "not-a-date",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLatestReportEmpty(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")

	rec := env.do(t, http.MethodGet, "/api/reports/latest", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListReportsEmpty(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")

	rec := env.do(t, http.MethodGet, "/api/reports", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var reports []*domain.WeeklyReport
	decodeBody(t, rec, &reports)
	assert.Empty(t, reports)
}
