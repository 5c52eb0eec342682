package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuexizhang/kindness-companion/internal/domain"
	"github.com/yuexizhang/kindness-companion/internal/service"
)

func TestCheckInFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")
	challengeID := firstChallengeID(t, env)

	// Checking in before subscribing is rejected.
	rec := env.do(t, http.MethodPost, "/api/check-ins", tokens.AccessToken, CheckInRequest{
		ChallengeID: challengeID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/challenges/%s/subscribe", challengeID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/check-ins", tokens.AccessToken, CheckInRequest{
		ChallengeID: challengeID,
		Notes:       "今天帮邻居拎了东西",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp CheckInResponse
	decodeBody(t, rec, &resp)
	require.NotNil(t, resp.CheckIn)
	assert.Equal(t, challengeID, resp.CheckIn.ChallengeID)
	// The pet celebrates even without LLM consent.
	require.NotNil(t, resp.PetReaction)
	assert.NotEmpty(t, resp.PetReaction.Dialogue)

	// A second check-in the same day conflicts.
	rec = env.do(t, http.MethodPost, "/api/check-ins", tokens.AccessToken, CheckInRequest{
		ChallengeID: challengeID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckInRejectsFutureDate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")
	challengeID := firstChallengeID(t, env)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/challenges/%s/subscribe", challengeID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/check-ins", tokens.AccessToken, CheckInRequest{
		ChallengeID: challengeID,
		Date:        "2099-01-01",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUndoCheckIn(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")
	challengeID := firstChallengeID(t, env)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/challenges/%s/subscribe", challengeID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/check-ins", tokens.AccessToken, CheckInRequest{ChallengeID: challengeID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/check-ins/undo", tokens.AccessToken, UndoCheckInRequest{
		ChallengeID: challengeID,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Undoing again finds nothing.
	rec = env.do(t, http.MethodPost, "/api/check-ins/undo", tokens.AccessToken, UndoCheckInRequest{
		ChallengeID: challengeID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCheckIns(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")
	challengeID := firstChallengeID(t, env)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/challenges/%s/subscribe", challengeID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/check-ins", tokens.AccessToken, CheckInRequest{ChallengeID: challengeID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/check-ins", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var checkIns []*domain.CheckInDetail
	decodeBody(t, rec, &checkIns)
	require.Len(t, checkIns, 1)
	assert.NotEmpty(t, checkIns[0].ChallengeTitle)

	rec = env.do(t, http.MethodGet, "/api/check-ins?from=2099-01-01", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	checkIns = nil
	decodeBody(t, rec, &checkIns)
	assert.Empty(t, checkIns)
}

func TestChallengeStatsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")
	challengeID := firstChallengeID(t, env)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/challenges/%s/subscribe", challengeID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/check-ins", tokens.AccessToken, CheckInRequest{ChallengeID: challengeID})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/challenges/%s/stats", challengeID), tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var stats service.ChallengeProgress
	decodeBody(t, rec, &stats)
	assert.Equal(t, 1, stats.TotalCheckIns)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestUserStatsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokens := registerUser(t, env, "xiaoming")

	rec := env.do(t, http.MethodGet, "/api/users/me/stats", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats service.UserProgress
	decodeBody(t, rec, &stats)
	assert.Equal(t, 0, stats.TotalCheckIns)
}
