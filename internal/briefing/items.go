package briefing

import (
	"assistant-agent/internal/google"
	"assistant-agent/internal/matching"
	"assistant-agent/internal/msteams"
	"assistant-agent/internal/notion"
	"assistant-agent/internal/slack"
)

// ItemType tags the source of a briefing item.
type ItemType string

const (
	ItemTypeMeeting ItemType = "meeting"
	ItemTypeTask    ItemType = "task"
	ItemTypeEmail   ItemType = "email"
	ItemTypeSlack   ItemType = "slack_message"
	ItemTypeTeams   ItemType = "teams_message"
)

// typePriority orders item types when urgency scores tie across types.
// Unknown types sort last.
func typePriority(t ItemType) int {
	switch t {
	case ItemTypeMeeting:
		return 1
	case ItemTypeTask:
		return 2
	case ItemTypeEmail:
		return 3
	case ItemTypeSlack:
		return 4
	case ItemTypeTeams:
		return 5
	default:
		return 99
	}
}

// Item is one entry in a briefing, tagged by Type. Exactly one of the
// payload pointers matching the tag is set.
type Item struct {
	Type         ItemType `json:"type"`
	Title        string   `json:"title"`
	Details      string   `json:"details,omitempty"`
	Link         string   `json:"link,omitempty"`
	SourceID     string   `json:"source_id,omitempty"`
	UrgencyScore int      `json:"urgency_score"`

	Meeting *matching.CalendarEventSummary `json:"meeting,omitempty"`
	Task    *notion.Task                   `json:"task,omitempty"`
	Email   *google.GmailMessageSnippet    `json:"email,omitempty"`
	Slack   *slack.MessageSnippet          `json:"slack_message,omitempty"`
	Teams   *msteams.Message               `json:"teams_message,omitempty"`
}

// SourceError records a non-fatal failure from one briefing source area.
type SourceError struct {
	SourceArea string `json:"source_area"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
}

// Briefing is the assembled result: items sorted by descending urgency,
// plus any per-source errors. Partial results are always populated even
// when some sources failed.
type Briefing struct {
	BriefingDate      string        `json:"briefing_date"`
	UserID            string        `json:"user_id"`
	PriorityItems     []Item        `json:"priority_items"`
	OverallSummary    string        `json:"overall_summary_message,omitempty"`
	ErrorsEncountered []SourceError `json:"errors_encountered,omitempty"`
}

// FocusArea selects which sources feed a briefing.
type FocusArea string

const (
	FocusTasks        FocusArea = "tasks"
	FocusMeetings     FocusArea = "meetings"
	FocusUrgentEmails FocusArea = "urgent_emails"
	FocusUrgentSlack  FocusArea = "urgent_slack_messages"
	FocusUrgentTeams  FocusArea = "urgent_teams_messages"
)

// DefaultFocusAreas is used when a request names none.
var DefaultFocusAreas = []FocusArea{FocusTasks, FocusMeetings, FocusUrgentEmails, FocusUrgentSlack}

// Request is a briefing request after intent extraction.
type Request struct {
	DateContext   string
	FocusAreas    []FocusArea
	ProjectFilter string
	UrgencyLevel  string
}

func hasFocus(areas []FocusArea, want FocusArea) bool {
	for _, a := range areas {
		if a == want {
			return true
		}
	}
	return false
}
