package msteams

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"assistant-agent/internal/config"
	"assistant-agent/internal/hasura"
	"assistant-agent/internal/logger"
)

const requestTimeout = 15 * time.Second

// tokenStore is the subset of the credential store the client needs.
type tokenStore interface {
	GetUserTokens(ctx context.Context, userID, service string) (*hasura.UserTokens, error)
}

// ServiceName identifies Microsoft Graph tokens in the credential store.
const ServiceName = "msteams"

// Client reads recent Teams chat messages through the Microsoft Graph API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      tokenStore
}

// NewClient creates a Graph client from configuration.
func NewClient(cfg config.MSTeamsConfig, store tokenStore) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    cfg.GraphBaseURL,
		store:      store,
	}
}

// graphChatMessage mirrors the Graph chat message resource, trimmed to the
// fields the briefing uses.
type graphChatMessage struct {
	ID              string    `json:"id"`
	ChatID          string    `json:"chatId"`
	CreatedDateTime time.Time `json:"createdDateTime"`
	WebURL          string    `json:"webUrl"`
	Body            struct {
		Content string `json:"content"`
	} `json:"body"`
	From *struct {
		User *struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"from"`
}

// RecentChatsAndMentionsForBriefing returns up to limit chat messages
// created on the target day (UTC), newest first. A user who has not
// connected Microsoft gets an error so the briefing can surface it.
func (c *Client) RecentChatsAndMentionsForBriefing(ctx context.Context, userID string, targetDate time.Time, limit int) ([]Message, error) {
	tokens, err := c.store.GetUserTokens(ctx, userID, ServiceName)
	if err != nil {
		return nil, fmt.Errorf("get Graph tokens: %w", err)
	}

	day := targetDate.UTC()
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("createdDateTime ge %s and createdDateTime lt %s",
		start.Format(time.RFC3339), end.Format(time.RFC3339)))
	query.Set("$top", fmt.Sprintf("%d", limit))
	endpoint := fmt.Sprintf("%s/me/chats/getAllMessages?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build Graph request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close Graph response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Value []graphChatMessage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode Graph response: %w", err)
	}

	messages := make([]Message, 0, len(payload.Value))
	for _, raw := range payload.Value {
		messages = append(messages, messageFromGraph(raw))
	}
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i].CreatedDateTime, messages[j].CreatedDateTime
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.After(*b)
	})
	if len(messages) > limit {
		messages = messages[:limit]
	}

	logger.Debug().
		Str("user_id", userID).
		Int("messages", len(messages)).
		Msg("fetched Teams chats for briefing")
	return messages, nil
}

func messageFromGraph(raw graphChatMessage) Message {
	msg := Message{
		ID:      raw.ID,
		ChatID:  raw.ChatID,
		Content: raw.Body.Content,
		WebURL:  raw.WebURL,
	}
	if !raw.CreatedDateTime.IsZero() {
		created := raw.CreatedDateTime.UTC()
		msg.CreatedDateTime = &created
	}
	if raw.From != nil && raw.From.User != nil {
		msg.UserID = raw.From.User.ID
		msg.UserName = raw.From.User.DisplayName
	}
	return msg
}
