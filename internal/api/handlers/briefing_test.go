package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-agent/internal/briefing"
)

type fakeBriefingGenerator struct {
	briefing *briefing.Briefing
	err      error
	userID   string
	req      briefing.Request
}

func (f *fakeBriefingGenerator) Generate(_ context.Context, userID string, req briefing.Request) (*briefing.Briefing, error) {
	f.userID = userID
	f.req = req
	return f.briefing, f.err
}

func briefingRouter(generator briefingGenerator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/skills/briefing", NewBriefingHandler(generator).GenerateBriefing)
	return router
}

func TestGenerateBriefing(t *testing.T) {
	generator := &fakeBriefingGenerator{briefing: &briefing.Briefing{
		BriefingDate:   "2025-06-10",
		UserID:         "user-1",
		OverallSummary: "Here is your briefing for Today: You have 1 meeting(s) scheduled.",
	}}
	router := briefingRouter(generator)

	w := performRequest(t, router, http.MethodPost, "/skills/briefing",
		`{"user_id":"user-1","date_context":"tomorrow","focus_areas":["meetings","tasks"],"urgency_level":"high"}`)

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, true, payload["success"])
	data := payload["data"].(map[string]any)
	assert.Equal(t, "2025-06-10", data["briefing_date"])
	assert.Contains(t, data["overall_summary_message"], "Here is your briefing")

	assert.Equal(t, "user-1", generator.userID)
	assert.Equal(t, "tomorrow", generator.req.DateContext)
	assert.Equal(t, []briefing.FocusArea{briefing.FocusMeetings, briefing.FocusTasks}, generator.req.FocusAreas)
	assert.Equal(t, "high", generator.req.UrgencyLevel)
}

func TestGenerateBriefingUnknownFocusArea(t *testing.T) {
	router := briefingRouter(&fakeBriefingGenerator{})

	w := performRequest(t, router, http.MethodPost, "/skills/briefing",
		`{"user_id":"user-1","focus_areas":["everything"]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown focus area")
}

func TestGenerateBriefingCriticalUrgency(t *testing.T) {
	generator := &fakeBriefingGenerator{briefing: &briefing.Briefing{UserID: "user-1"}}
	router := briefingRouter(generator)

	// "critical" feeds the task priority filter just like "high".
	w := performRequest(t, router, http.MethodPost, "/skills/briefing",
		`{"user_id":"user-1","urgency_level":"critical"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "critical", generator.req.UrgencyLevel)
}

func TestGenerateBriefingInvalidUrgency(t *testing.T) {
	router := briefingRouter(&fakeBriefingGenerator{})

	w := performRequest(t, router, http.MethodPost, "/skills/briefing",
		`{"user_id":"user-1","urgency_level":"extreme"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestGenerateBriefingMissingUser(t *testing.T) {
	router := briefingRouter(&fakeBriefingGenerator{})

	w := performRequest(t, router, http.MethodPost, "/skills/briefing", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
