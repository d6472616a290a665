package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"assistant-agent/internal/api"
	"assistant-agent/internal/briefing"
)

// briefingGenerator assembles a prioritized briefing for a user.
type briefingGenerator interface {
	Generate(ctx context.Context, userID string, req briefing.Request) (*briefing.Briefing, error)
}

// BriefingHandler handles the daily-briefing skill endpoint.
type BriefingHandler struct {
	service briefingGenerator
}

func NewBriefingHandler(service briefingGenerator) *BriefingHandler {
	return &BriefingHandler{service: service}
}

// BriefingRequest is the request body for the briefing skill. All fields
// except the user are optional; an empty date context means today.
type BriefingRequest struct {
	UserID        string   `json:"user_id" binding:"required"`
	DateContext   string   `json:"date_context"`
	FocusAreas    []string `json:"focus_areas"`
	ProjectFilter string   `json:"project_filter"`
	UrgencyLevel  string   `json:"urgency_level" binding:"omitempty,oneof=low medium high critical"`
}

var validFocusAreas = map[string]briefing.FocusArea{
	string(briefing.FocusTasks):        briefing.FocusTasks,
	string(briefing.FocusMeetings):     briefing.FocusMeetings,
	string(briefing.FocusUrgentEmails): briefing.FocusUrgentEmails,
	string(briefing.FocusUrgentSlack):  briefing.FocusUrgentSlack,
	string(briefing.FocusUrgentTeams):  briefing.FocusUrgentTeams,
}

// GenerateBriefing produces the prioritized briefing for a user and date
// context.
func (h *BriefingHandler) GenerateBriefing(c *gin.Context) {
	var req BriefingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation, "Invalid request body", err.Error())
		return
	}

	var focus []briefing.FocusArea
	for _, raw := range req.FocusAreas {
		area, ok := validFocusAreas[raw]
		if !ok {
			api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation,
				"Invalid focus area", fmt.Sprintf("unknown focus area %q", raw))
			return
		}
		focus = append(focus, area)
	}

	result, err := h.service.Generate(c.Request.Context(), req.UserID, briefing.Request{
		DateContext:   req.DateContext,
		FocusAreas:    focus,
		ProjectFilter: req.ProjectFilter,
		UrgencyLevel:  req.UrgencyLevel,
	})
	if err != nil {
		api.SendError(c, http.StatusInternalServerError, api.ErrCodeInternal, "Failed to generate briefing", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, result)
}
