package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"assistant-agent/internal/api"
	"assistant-agent/internal/google"
)

// stateTTL bounds how long a pending OAuth flow stays valid.
const stateTTL = 10 * time.Minute

// oauthService is the Google OAuth surface the handler needs.
type oauthService interface {
	GetAuthURL(state string) string
	ExchangeCode(ctx context.Context, userID, code string) error
}

type stateEntry struct {
	userID    string
	expiresAt time.Time
}

// OAuthHandler handles the Google account-connection flow. Pending states
// map the provider callback back to the assistant user who started it.
type OAuthHandler struct {
	googleOAuth oauthService

	mu     sync.Mutex
	states map[string]stateEntry
	now    func() time.Time
}

func NewOAuthHandler(googleOAuth oauthService) *OAuthHandler {
	return &OAuthHandler{
		googleOAuth: googleOAuth,
		states:      make(map[string]stateEntry),
		now:         time.Now,
	}
}

// storeState records a pending flow and prunes expired ones.
func (h *OAuthHandler) storeState(state, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	for s, entry := range h.states {
		if now.After(entry.expiresAt) {
			delete(h.states, s)
		}
	}
	h.states[state] = stateEntry{userID: userID, expiresAt: now.Add(stateTTL)}
}

// consumeState validates a callback state and returns the user who owns it.
func (h *OAuthHandler) consumeState(state string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry, exists := h.states[state]
	if !exists {
		return "", false
	}
	delete(h.states, state)

	if h.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.userID, true
}

// GetGoogleAuthURLResponse is the response for getting the auth URL
type GetGoogleAuthURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// GetGoogleAuthURL returns the authorization URL to connect a user's Google
// account.
func (h *OAuthHandler) GetGoogleAuthURL(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation, "user_id query parameter is required", "")
		return
	}

	state, err := google.GenerateState()
	if err != nil {
		api.SendError(c, http.StatusInternalServerError, api.ErrCodeInternal, "Failed to generate state", err.Error())
		return
	}
	h.storeState(state, userID)

	api.SendSuccess(c, http.StatusOK, GetGoogleAuthURLResponse{
		URL:   h.googleOAuth.GetAuthURL(state),
		State: state,
	})
}

// GoogleCallback handles the OAuth redirect from Google.
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	if errorParam := c.Query("error"); errorParam != "" {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeBadRequest, "Authorization was denied", errorParam)
		return
	}

	userID, ok := h.consumeState(c.Query("state"))
	if !ok {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation, "Invalid or expired state", "")
		return
	}

	if err := h.googleOAuth.ExchangeCode(c.Request.Context(), userID, c.Query("code")); err != nil {
		api.SendError(c, http.StatusInternalServerError, api.ErrCodeInternal, "Failed to exchange authorization code", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusOK, gin.H{
		"provider": "google",
		"user_id":  userID,
	})
}
