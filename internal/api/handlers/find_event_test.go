package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-agent/internal/matching"
)

type fakeEventFinder struct {
	event     *matching.CalendarEventSummary
	err       error
	userID    string
	reference string
	hints     *matching.DateHints
}

func (f *fakeEventFinder) FindEventByFuzzyReference(_ context.Context, userID, reference string, hints *matching.DateHints) (*matching.CalendarEventSummary, error) {
	f.userID = userID
	f.reference = reference
	f.hints = hints
	return f.event, f.err
}

func performRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func findEventRouter(finder eventFinder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/skills/find-event", NewFindEventHandler(finder).FindEvent)
	return router
}

func TestFindEventFound(t *testing.T) {
	finder := &fakeEventFinder{event: &matching.CalendarEventSummary{
		ID:        "evt-1",
		Title:     "Project Sync",
		StartTime: time.Date(2025, time.June, 11, 14, 0, 0, 0, time.UTC),
	}}
	router := findEventRouter(finder)

	w := performRequest(t, router, http.MethodPost, "/skills/find-event",
		`{"user_id":"user-1","event_reference":"project sync","date_hints":{"specific_date":"2025-06-11T00:00:00Z"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, true, payload["success"])

	data := payload["data"].(map[string]any)
	assert.Equal(t, true, data["found"])
	event := data["event"].(map[string]any)
	assert.Equal(t, "evt-1", event["ID"])

	assert.Equal(t, "user-1", finder.userID)
	assert.Equal(t, "project sync", finder.reference)
	require.NotNil(t, finder.hints)
	require.NotNil(t, finder.hints.SpecificDate)
	assert.Equal(t, time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), finder.hints.SpecificDate.UTC())
}

func TestFindEventNoMatch(t *testing.T) {
	router := findEventRouter(&fakeEventFinder{})

	w := performRequest(t, router, http.MethodPost, "/skills/find-event",
		`{"user_id":"user-1","event_reference":"standup"}`)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, false, data["found"])
	assert.NotContains(t, data, "event")
}

func TestFindEventMissingReference(t *testing.T) {
	router := findEventRouter(&fakeEventFinder{})

	w := performRequest(t, router, http.MethodPost, "/skills/find-event", `{"user_id":"user-1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestFindEventFinderError(t *testing.T) {
	router := findEventRouter(&fakeEventFinder{err: errors.New("calendar unavailable")})

	w := performRequest(t, router, http.MethodPost, "/skills/find-event",
		`{"user_id":"user-1","event_reference":"standup"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
