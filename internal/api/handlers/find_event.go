package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"assistant-agent/internal/api"
	"assistant-agent/internal/matching"
)

// eventFinder resolves a fuzzy event reference against a user's calendar.
type eventFinder interface {
	FindEventByFuzzyReference(ctx context.Context, userID, reference string, hints *matching.DateHints) (*matching.CalendarEventSummary, error)
}

// FindEventHandler handles the find-event skill endpoint.
type FindEventHandler struct {
	finder eventFinder
}

func NewFindEventHandler(finder eventFinder) *FindEventHandler {
	return &FindEventHandler{finder: finder}
}

// DateHintsRequest narrows the calendar search window. All fields optional;
// a specific date wins over a start/end range.
type DateHintsRequest struct {
	SpecificDate *time.Time `json:"specific_date"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

// FindEventRequest is the request body for the find-event skill.
type FindEventRequest struct {
	UserID         string            `json:"user_id" binding:"required"`
	EventReference string            `json:"event_reference" binding:"required"`
	DateHints      *DateHintsRequest `json:"date_hints"`
}

// FindEventResponse reports the best match, if any cleared the confidence
// threshold.
type FindEventResponse struct {
	Found bool                           `json:"found"`
	Event *matching.CalendarEventSummary `json:"event,omitempty"`
}

// FindEvent resolves a natural-language event reference to a calendar event.
func (h *FindEventHandler) FindEvent(c *gin.Context) {
	var req FindEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation, "Invalid request body", err.Error())
		return
	}

	var hints *matching.DateHints
	if req.DateHints != nil {
		hints = &matching.DateHints{
			SpecificDate: req.DateHints.SpecificDate,
			StartDate:    req.DateHints.StartDate,
			EndDate:      req.DateHints.EndDate,
		}
	}

	event, err := h.finder.FindEventByFuzzyReference(c.Request.Context(), req.UserID, req.EventReference, hints)
	if err != nil {
		api.SendError(c, http.StatusInternalServerError, api.ErrCodeInternal, "Failed to search calendar", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, FindEventResponse{
		Found: event != nil,
		Event: event,
	})
}
