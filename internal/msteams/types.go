// Package msteams reads recent chat messages via the Microsoft Graph API.
package msteams

import "time"

// Message is a recent Teams chat message or mention, trimmed to what the
// briefing needs.
type Message struct {
	ID              string     `json:"id"`
	ChatID          string     `json:"chat_id,omitempty"`
	UserID          string     `json:"user_id,omitempty"`
	UserName        string     `json:"user_name,omitempty"`
	Content         string     `json:"content"`
	CreatedDateTime *time.Time `json:"created_date_time,omitempty"`
	WebURL          string     `json:"web_url,omitempty"`
}
