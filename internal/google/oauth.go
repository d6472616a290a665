package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"

	"assistant-agent/internal/config"
	"assistant-agent/internal/hasura"
	"assistant-agent/internal/logger"
)

// ServiceName identifies Google tokens in the credential store. Calendar
// and Gmail share one consent grant.
const ServiceName = "google"

// Scopes defines the OAuth scopes requested for Google APIs
var Scopes = []string{
	"openid",
	"email",
	"profile",
	calendar.CalendarReadonlyScope,
	gmail.GmailReadonlyScope,
}

// tokenStore is the subset of the credential store the OAuth service needs.
type tokenStore interface {
	GetUserTokens(ctx context.Context, userID, service string) (*hasura.UserTokens, error)
	SaveUserTokens(ctx context.Context, userID, service string, tokens *hasura.UserTokens) error
}

// OAuthService handles Google OAuth2 authentication per assistant user.
type OAuthService struct {
	config *oauth2.Config
	store  tokenStore
}

// NewOAuthService creates a Google OAuth service from configuration.
func NewOAuthService(cfg *config.Config, store tokenStore) (*OAuthService, error) {
	if cfg.Google.ClientID == "" || cfg.Google.ClientSecret == "" {
		return nil, fmt.Errorf("google OAuth credentials not configured")
	}

	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     googleoauth.Endpoint,
		},
		store: store,
	}, nil
}

// GenerateState generates a secure random state for CSRF protection
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GetAuthURL returns the URL to redirect the user for authorization.
func (s *OAuthService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeCode exchanges an authorization code for tokens and stores them
// for the user.
func (s *OAuthService) ExchangeCode(ctx context.Context, userID, code string) error {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	return s.saveToken(ctx, userID, token)
}

// ClientForUser returns an authenticated HTTP client for the user. The
// client handles token refresh; a refreshed token is persisted back to the
// store. Returns hasura.ErrTokenNotFound when the user has not connected
// Google.
func (s *OAuthService) ClientForUser(ctx context.Context, userID string) (*http.Client, error) {
	stored, err := s.store.GetUserTokens(ctx, userID, ServiceName)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	}

	tokenSource := s.config.TokenSource(ctx, token)

	// Get a potentially refreshed token
	newToken, err := tokenSource.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}

	// If the token was refreshed, save the new one
	if newToken.AccessToken != token.AccessToken {
		if err := s.saveToken(ctx, userID, newToken); err != nil {
			// Log but don't fail - we still have a valid token
			logger.Warn().Err(err).Str("user_id", userID).Msg("failed to save refreshed token")
		}
	}

	return oauth2.NewClient(ctx, tokenSource), nil
}

func (s *OAuthService) saveToken(ctx context.Context, userID string, token *oauth2.Token) error {
	return s.store.SaveUserTokens(ctx, userID, ServiceName, &hasura.UserTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	})
}
