// Package hasura talks to the Hasura GraphQL engine that fronts the
// assistant's user data, including per-user OAuth tokens.
package hasura

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/machinebox/graphql"

	"assistant-agent/internal/config"
)

const defaultRequestTimeout = 15 * time.Second

// Client wraps a GraphQL client with Hasura admin authentication.
type Client struct {
	gql         *graphql.Client
	adminSecret string
}

// NewClient creates a Hasura client from configuration.
func NewClient(cfg config.HasuraConfig) *Client {
	httpClient := &http.Client{Timeout: clientTimeout(cfg.Timeout)}
	return &Client{
		gql:         graphql.NewClient(cfg.Endpoint, graphql.WithHTTPClient(httpClient)),
		adminSecret: cfg.AdminSecret,
	}
}

// clientTimeout falls back to the default when no timeout is configured.
func clientTimeout(configured time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	return defaultRequestTimeout
}

// Run executes a GraphQL request with admin credentials attached.
func (c *Client) Run(ctx context.Context, req *graphql.Request, resp interface{}) error {
	if c.adminSecret != "" {
		req.Header.Set("x-hasura-admin-secret", c.adminSecret)
	}
	if err := c.gql.Run(ctx, req, resp); err != nil {
		return fmt.Errorf("hasura request: %w", err)
	}
	return nil
}
