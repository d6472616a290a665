package slack

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"assistant-agent/internal/logger"
)

// dmChannelFetchLimit bounds how many IM conversations one briefing scan
// walks.
const dmChannelFetchLimit = 20

// api is the subset of the Slack Web API the client uses.
type api interface {
	GetConversationsContext(ctx context.Context, params *slackapi.GetConversationsParameters) ([]slackapi.Channel, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slackapi.GetConversationHistoryParameters) (*slackapi.GetConversationHistoryResponse, error)
	GetUserInfoContext(ctx context.Context, user string) (*slackapi.User, error)
	GetPermalinkContext(ctx context.Context, params *slackapi.PermalinkParameters) (string, error)
	OpenConversationContext(ctx context.Context, params *slackapi.OpenConversationParameters) (*slackapi.Channel, bool, bool, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Client reads recent DMs for briefings and delivers assistant messages.
type Client struct {
	api api
}

// NewClient creates a Slack client from a bot token.
func NewClient(botToken string) *Client {
	return &Client{api: slackapi.New(botToken)}
}

// RecentDMsAndMentionsForBriefing returns up to limit direct messages
// received on the target day (UTC), newest first.
func (c *Client) RecentDMsAndMentionsForBriefing(ctx context.Context, userID string, targetDate time.Time, limit int) ([]MessageSnippet, error) {
	day := targetDate.UTC()
	oldest := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	latest := oldest.AddDate(0, 0, 1)

	channels, _, err := c.api.GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
		Types: []string{"im"},
		Limit: dmChannelFetchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list DM conversations: %w", err)
	}

	userNames := map[string]string{}
	var snippets []MessageSnippet
	for _, channel := range channels {
		history, err := c.api.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
			ChannelID: channel.ID,
			Oldest:    slackTimestamp(oldest),
			Latest:    slackTimestamp(latest),
			Limit:     limit,
		})
		if err != nil {
			logger.Warn().Err(err).Str("channel_id", channel.ID).Msg("skipping DM history")
			continue
		}
		for _, msg := range history.Messages {
			if msg.SubType != "" {
				continue
			}
			snippets = append(snippets, c.snippetFromMessage(ctx, channel.ID, msg, userNames))
		}
	}

	sort.SliceStable(snippets, func(i, j int) bool {
		return snippets[i].ID > snippets[j].ID
	})
	if len(snippets) > limit {
		snippets = snippets[:limit]
	}

	logger.Debug().
		Str("user_id", userID).
		Int("messages", len(snippets)).
		Msg("fetched Slack DMs for briefing")
	return snippets, nil
}

func (c *Client) snippetFromMessage(ctx context.Context, channelID string, msg slackapi.Message, userNames map[string]string) MessageSnippet {
	snippet := MessageSnippet{
		ID:        msg.Timestamp,
		ChannelID: channelID,
		UserID:    msg.User,
		Text:      msg.Text,
	}
	if ts, err := parseSlackTimestamp(msg.Timestamp); err == nil {
		snippet.Timestamp = &ts
	}
	if msg.User != "" {
		name, ok := userNames[msg.User]
		if !ok {
			if info, err := c.api.GetUserInfoContext(ctx, msg.User); err == nil {
				name = info.Name
			}
			userNames[msg.User] = name
		}
		snippet.UserName = name
	}
	if link, err := c.api.GetPermalinkContext(ctx, &slackapi.PermalinkParameters{
		Channel: channelID,
		Ts:      msg.Timestamp,
	}); err == nil {
		snippet.Permalink = link
	}
	return snippet
}

// SendDirectMessage opens (or reuses) a DM with a Slack user and posts the
// given text.
func (c *Client) SendDirectMessage(ctx context.Context, slackUserID, text string) error {
	channel, _, _, err := c.api.OpenConversationContext(ctx, &slackapi.OpenConversationParameters{
		Users: []string{slackUserID},
	})
	if err != nil {
		return fmt.Errorf("open DM conversation: %w", err)
	}
	if _, _, err := c.api.PostMessageContext(ctx, channel.ID, slackapi.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// SendMessage posts text to a channel ID.
func (c *Client) SendMessage(ctx context.Context, channelID, text string) error {
	if _, _, err := c.api.PostMessageContext(ctx, channelID, slackapi.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// slackTimestamp renders a time as a Slack "ts" value (seconds with
// microsecond precision).
func slackTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// parseSlackTimestamp converts a "1718000000.000100" ts into a time.
func parseSlackTimestamp(ts string) (time.Time, error) {
	secsPart, microsPart, _ := strings.Cut(ts, ".")
	secs, err := strconv.ParseInt(secsPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse slack timestamp %q: %w", ts, err)
	}
	micros := int64(0)
	if microsPart != "" {
		micros, err = strconv.ParseInt(microsPart, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse slack timestamp %q: %w", ts, err)
		}
	}
	return time.Unix(secs, micros*1000).UTC(), nil
}
