package hasura

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-agent/internal/config"
	"assistant-agent/internal/crypto"
)

func newTestEncryptor(t *testing.T) *crypto.TokenEncryptor {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	encryptor, err := crypto.NewTokenEncryptor(key)
	require.NoError(t, err)
	return encryptor
}

// graphqlStub serves canned GraphQL responses and records request bodies.
func graphqlStub(t *testing.T, respond func(body string) string) (*httptest.Server, *[]string) {
	t.Helper()
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		bodies = append(bodies, string(raw))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, respond(string(raw)))
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func TestTokenStoreRoundTrip(t *testing.T) {
	encryptor := newTestEncryptor(t)

	storedAccess, err := encryptor.EncryptToString("access-token-value")
	require.NoError(t, err)
	storedRefresh, err := encryptor.EncryptToString("refresh-token-value")
	require.NoError(t, err)

	expiry := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)
	srv, _ := graphqlStub(t, func(string) string {
		return fmt.Sprintf(`{"data":{"user_tokens":[{"access_token":%q,"refresh_token":%q,"token_type":"Bearer","expiry":%q}]}}`,
			storedAccess, storedRefresh, expiry.Format(time.RFC3339))
	})

	store := NewTokenStore(NewClient(config.HasuraConfig{Endpoint: srv.URL}), encryptor)

	tokens, err := store.GetUserTokens(context.Background(), "user-1", "google_calendar")
	require.NoError(t, err)
	assert.Equal(t, "access-token-value", tokens.AccessToken)
	assert.Equal(t, "refresh-token-value", tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.True(t, tokens.Expiry.Equal(expiry))
}

func TestTokenStoreNotFound(t *testing.T) {
	srv, _ := graphqlStub(t, func(string) string {
		return `{"data":{"user_tokens":[]}}`
	})
	store := NewTokenStore(NewClient(config.HasuraConfig{Endpoint: srv.URL}), newTestEncryptor(t))

	_, err := store.GetUserTokens(context.Background(), "user-1", "google_calendar")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenStoreSaveEncryptsTokens(t *testing.T) {
	encryptor := newTestEncryptor(t)
	srv, bodies := graphqlStub(t, func(string) string {
		return `{"data":{"insert_user_tokens":{"affected_rows":1}}}`
	})
	store := NewTokenStore(NewClient(config.HasuraConfig{Endpoint: srv.URL}), encryptor)

	err := store.SaveUserTokens(context.Background(), "user-1", "google_calendar", &UserTokens{
		AccessToken:  "plaintext-access",
		RefreshToken: "plaintext-refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	// The raw token values must never appear in the request payload.
	require.Len(t, *bodies, 1)
	body := (*bodies)[0]
	assert.NotContains(t, body, "plaintext-access")
	assert.NotContains(t, body, "plaintext-refresh")
	assert.Contains(t, body, "user-1")
	assert.Contains(t, body, "google_calendar")
}

func TestClientSendsAdminSecret(t *testing.T) {
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("x-hasura-admin-secret")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"user_tokens":[]}}`)
	}))
	t.Cleanup(srv.Close)

	store := NewTokenStore(NewClient(config.HasuraConfig{Endpoint: srv.URL, AdminSecret: "s3cret"}), newTestEncryptor(t))
	_, err := store.GetUserTokens(context.Background(), "user-1", "google_calendar")
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Equal(t, "s3cret", gotSecret)
}
