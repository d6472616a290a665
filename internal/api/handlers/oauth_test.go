package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOAuthService struct {
	exchangeErr   error
	exchangedUser string
	exchangedCode string
	exchangeCalls int
	authURLStates []string
}

func (f *fakeOAuthService) GetAuthURL(state string) string {
	f.authURLStates = append(f.authURLStates, state)
	return "https://accounts.google.com/o/oauth2/auth?state=" + state
}

func (f *fakeOAuthService) ExchangeCode(_ context.Context, userID, code string) error {
	f.exchangeCalls++
	f.exchangedUser = userID
	f.exchangedCode = code
	return f.exchangeErr
}

func oauthRouter(handler *OAuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/auth/google", handler.GetGoogleAuthURL)
	router.GET("/auth/google/callback", handler.GoogleCallback)
	return router
}

func TestGoogleAuthFlow(t *testing.T) {
	service := &fakeOAuthService{}
	handler := NewOAuthHandler(service)
	router := oauthRouter(handler)

	w := performRequest(t, router, http.MethodGet, "/auth/google?user_id=user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	state := data["state"].(string)
	assert.NotEmpty(t, state)
	assert.Contains(t, data["url"], state)

	// Complete the flow with the issued state.
	w = performRequest(t, router, http.MethodGet, "/auth/google/callback?state="+state+"&code=auth-code", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, service.exchangeCalls)
	assert.Equal(t, "user-1", service.exchangedUser)
	assert.Equal(t, "auth-code", service.exchangedCode)

	// State is single use.
	w = performRequest(t, router, http.MethodGet, "/auth/google/callback?state="+state+"&code=auth-code", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, service.exchangeCalls)
}

func TestGoogleAuthURLRequiresUser(t *testing.T) {
	router := oauthRouter(NewOAuthHandler(&fakeOAuthService{}))

	w := performRequest(t, router, http.MethodGet, "/auth/google", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGoogleCallbackUnknownState(t *testing.T) {
	service := &fakeOAuthService{}
	router := oauthRouter(NewOAuthHandler(service))

	w := performRequest(t, router, http.MethodGet, "/auth/google/callback?state=forged&code=auth-code", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, service.exchangeCalls)
}

func TestGoogleCallbackExpiredState(t *testing.T) {
	service := &fakeOAuthService{}
	handler := NewOAuthHandler(service)
	router := oauthRouter(handler)

	w := performRequest(t, router, http.MethodGet, "/auth/google?user_id=user-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody(t, w)["data"].(map[string]any)["state"].(string)

	handler.now = func() time.Time { return time.Now().Add(stateTTL + time.Minute) }

	w = performRequest(t, router, http.MethodGet, "/auth/google/callback?state="+state+"&code=auth-code", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, service.exchangeCalls)
}

func TestGoogleCallbackProviderError(t *testing.T) {
	service := &fakeOAuthService{}
	router := oauthRouter(NewOAuthHandler(service))

	w := performRequest(t, router, http.MethodGet, "/auth/google/callback?error=access_denied", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "access_denied")
	assert.Equal(t, 0, service.exchangeCalls)
}
