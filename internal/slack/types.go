// Package slack wraps the Slack Web API for briefing lookups and message
// delivery.
package slack

import "time"

// MessageSnippet is a recent DM or mention, trimmed to what the briefing
// needs. ID is the Slack message timestamp ("ts"), which is unique per
// channel.
type MessageSnippet struct {
	ID          string     `json:"id"`
	ChannelID   string     `json:"channel_id,omitempty"`
	ChannelName string     `json:"channel_name,omitempty"`
	UserID      string     `json:"user_id,omitempty"`
	UserName    string     `json:"user_name,omitempty"`
	Text        string     `json:"text,omitempty"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Permalink   string     `json:"permalink,omitempty"`
}
