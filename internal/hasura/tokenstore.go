package hasura

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/machinebox/graphql"

	"assistant-agent/internal/crypto"
)

// ErrTokenNotFound indicates the user has not connected the service.
var ErrTokenNotFound = errors.New("user tokens not found")

// UserTokens is a decrypted OAuth token set for one user and service.
type UserTokens struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

const getUserTokensQuery = `
query GetUserTokens($userId: String!, $service: String!) {
  user_tokens(
    where: {user_id: {_eq: $userId}, service: {_eq: $service}},
    order_by: {updated_at: desc},
    limit: 1
  ) {
    access_token
    refresh_token
    token_type
    expiry
  }
}`

const upsertUserTokensMutation = `
mutation UpsertUserTokens($objects: [user_tokens_insert_input!]!) {
  insert_user_tokens(
    objects: $objects,
    on_conflict: {
      constraint: user_tokens_user_id_service_key,
      update_columns: [access_token, refresh_token, token_type, expiry, updated_at]
    }
  ) {
    affected_rows
  }
}`

// TokenStore persists per-user OAuth tokens in Hasura. Token material is
// encrypted at rest; only ciphertext crosses the wire.
type TokenStore struct {
	client    *Client
	encryptor *crypto.TokenEncryptor
}

// NewTokenStore creates a token store backed by the given Hasura client.
func NewTokenStore(client *Client, encryptor *crypto.TokenEncryptor) *TokenStore {
	return &TokenStore{client: client, encryptor: encryptor}
}

// GetUserTokens fetches and decrypts the token set for a user and service.
// Returns ErrTokenNotFound when the user has never connected the service.
func (s *TokenStore) GetUserTokens(ctx context.Context, userID, service string) (*UserTokens, error) {
	req := graphql.NewRequest(getUserTokensQuery)
	req.Var("userId", userID)
	req.Var("service", service)

	var resp struct {
		UserTokens []struct {
			AccessToken  string    `json:"access_token"`
			RefreshToken string    `json:"refresh_token"`
			TokenType    string    `json:"token_type"`
			Expiry       time.Time `json:"expiry"`
		} `json:"user_tokens"`
	}
	if err := s.client.Run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("get user tokens: %w", err)
	}
	if len(resp.UserTokens) == 0 {
		return nil, ErrTokenNotFound
	}

	row := resp.UserTokens[0]
	accessToken, err := s.encryptor.DecryptFromString(row.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("decrypt access token: %w", err)
	}
	tokens := &UserTokens{
		AccessToken: accessToken,
		TokenType:   row.TokenType,
		Expiry:      row.Expiry,
	}
	if row.RefreshToken != "" {
		refreshToken, err := s.encryptor.DecryptFromString(row.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("decrypt refresh token: %w", err)
		}
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

// SaveUserTokens encrypts and upserts the token set for a user and service.
func (s *TokenStore) SaveUserTokens(ctx context.Context, userID, service string, tokens *UserTokens) error {
	accessCiphertext, err := s.encryptor.EncryptToString(tokens.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypt access token: %w", err)
	}
	refreshCiphertext := ""
	if tokens.RefreshToken != "" {
		refreshCiphertext, err = s.encryptor.EncryptToString(tokens.RefreshToken)
		if err != nil {
			return fmt.Errorf("encrypt refresh token: %w", err)
		}
	}

	req := graphql.NewRequest(upsertUserTokensMutation)
	req.Var("objects", []map[string]interface{}{{
		"user_id":       userID,
		"service":       service,
		"access_token":  accessCiphertext,
		"refresh_token": refreshCiphertext,
		"token_type":    tokens.TokenType,
		"expiry":        tokens.Expiry.UTC().Format(time.RFC3339),
		"updated_at":    "now()",
	}})

	var resp struct {
		InsertUserTokens struct {
			AffectedRows int `json:"affected_rows"`
		} `json:"insert_user_tokens"`
	}
	if err := s.client.Run(ctx, req, &resp); err != nil {
		return fmt.Errorf("save user tokens: %w", err)
	}
	return nil
}
