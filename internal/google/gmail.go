package google

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"assistant-agent/internal/hasura"
	"assistant-agent/internal/logger"
)

// GmailClient fetches recent unread emails for briefings.
type GmailClient struct {
	oauth *OAuthService
}

// NewGmailClient creates a Gmail client on top of the OAuth service.
func NewGmailClient(oauth *OAuthService) *GmailClient {
	return &GmailClient{oauth: oauth}
}

// RecentUnreadForBriefing returns up to limit unread emails received on the
// target day (UTC). A user who has not connected Google gets an empty list,
// not an error.
func (c *GmailClient) RecentUnreadForBriefing(ctx context.Context, userID string, targetDate time.Time, limit int) ([]GmailMessageSnippet, error) {
	client, err := c.oauth.ClientForUser(ctx, userID)
	if errors.Is(err, hasura.ErrTokenNotFound) {
		logger.Warn().Str("user_id", userID).Msg("no Google tokens for user, returning no emails")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get OAuth client: %w", err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	// Gmail date search operators are exclusive of "before", so the window
	// is [target day, next day).
	day := targetDate.UTC()
	query := fmt.Sprintf("is:unread after:%s before:%s",
		day.Format("2006/01/02"), day.AddDate(0, 0, 1).Format("2006/01/02"))

	list, err := svc.Users.Messages.List("me").
		Q(query).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	snippets := make([]GmailMessageSnippet, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := svc.Users.Messages.Get("me", ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "Date").
			Context(ctx).
			Do()
		if err != nil {
			logger.Warn().Err(err).Str("message_id", ref.Id).Msg("skipping unreadable message")
			continue
		}
		snippets = append(snippets, messageSnippet(msg))
	}
	return snippets, nil
}

func messageSnippet(msg *gmail.Message) GmailMessageSnippet {
	snippet := GmailMessageSnippet{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		Link:     "https://mail.google.com/mail/u/0/#inbox/" + msg.Id,
	}
	if msg.Payload == nil {
		return snippet
	}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			snippet.Subject = h.Value
		case "From":
			snippet.From = h.Value
		case "Date":
			if t, err := mail.ParseDate(h.Value); err == nil {
				utc := t.UTC()
				snippet.Date = &utc
			}
		}
	}
	return snippet
}
