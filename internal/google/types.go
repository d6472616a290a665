// Package google integrates Google Calendar and Gmail through per-user
// OAuth tokens held in the credential store.
package google

import "time"

// GmailMessageSnippet is a recent unread email trimmed to what the briefing
// needs.
type GmailMessageSnippet struct {
	ID       string     `json:"id"`
	ThreadID string     `json:"thread_id,omitempty"`
	Subject  string     `json:"subject,omitempty"`
	From     string     `json:"from,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
	Snippet  string     `json:"snippet,omitempty"`
	Link     string     `json:"link,omitempty"`
}
