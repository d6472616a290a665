package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"assistant-agent/internal/api"
)

// slackSender delivers messages to a Slack workspace.
type slackSender interface {
	SendDirectMessage(ctx context.Context, slackUserID, text string) error
	SendMessage(ctx context.Context, channelID, text string) error
}

// SlackMessageHandler handles the send-slack-message skill endpoint.
type SlackMessageHandler struct {
	sender slackSender
}

func NewSlackMessageHandler(sender slackSender) *SlackMessageHandler {
	return &SlackMessageHandler{sender: sender}
}

// SendSlackMessageRequest is the request body for the send-slack-message
// skill. Exactly one of channel_id or slack_user_id selects the target.
type SendSlackMessageRequest struct {
	ChannelID   string `json:"channel_id"`
	SlackUserID string `json:"slack_user_id"`
	Text        string `json:"text" binding:"required,max=4000"`
}

// SendSlackMessageResponse confirms delivery.
type SendSlackMessageResponse struct {
	Delivered bool   `json:"delivered"`
	Target    string `json:"target"`
}

// SendMessage delivers a message to a channel or as a DM.
func (h *SlackMessageHandler) SendMessage(c *gin.Context) {
	var req SendSlackMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation, "Invalid request body", err.Error())
		return
	}

	if (req.ChannelID == "") == (req.SlackUserID == "") {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation,
			"Invalid target", "exactly one of channel_id or slack_user_id is required")
		return
	}

	var err error
	target := req.ChannelID
	if req.SlackUserID != "" {
		target = req.SlackUserID
		err = h.sender.SendDirectMessage(c.Request.Context(), req.SlackUserID, req.Text)
	} else {
		err = h.sender.SendMessage(c.Request.Context(), req.ChannelID, req.Text)
	}
	if err != nil {
		api.SendError(c, http.StatusInternalServerError, api.ErrCodeInternal, "Failed to send Slack message", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, SendSlackMessageResponse{
		Delivered: true,
		Target:    target,
	})
}
