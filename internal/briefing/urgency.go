package briefing

import (
	"math"
	"strings"
	"time"

	"assistant-agent/internal/notion"
)

// ScorerConfig holds the point values behind urgency scoring. The numbers
// are empirically tuned; change them together, not in isolation.
type ScorerConfig struct {
	HighUrgencyKeywords   []string
	MediumUrgencyKeywords []string
	HighKeywordBonus      float64
	MediumKeywordBonus    float64

	MeetingTargetDayBase    float64
	MeetingProximityPerHour float64
	MeetingProximityCap     float64
	MeetingWithinHourBonus  float64
	MeetingWithin3HrsBonus  float64
	// MeetingSmallGroupBonus covers events with no attendee data too; a
	// solo calendar block scores like a 1:1.
	MeetingSmallGroupBonus float64
	MeetingMidGroupBonus   float64

	TaskOverdueBase         float64
	TaskDueTodayBase        float64
	TaskDueSoonBase         float64
	TaskDueLaterBase        float64
	TaskNoDueDateBase       float64
	TaskDueSoonDays         int
	TaskLaterPriorityCap    float64
	TaskRecentActivityBonus float64
	TaskRecentActivityDays  int
	TaskPriorityBonus       map[string]float64

	EmailBase            float64
	EmailRecentBonus     float64
	EmailRecentWindowHrs float64
	ChatBase             float64
	ChatRecentBonus      float64
	ChatRecentWindowHrs  float64
	UnknownTypeBase      float64
}

// DefaultScorerConfig is the tuning used by the daily briefing.
var DefaultScorerConfig = ScorerConfig{
	HighUrgencyKeywords: []string{
		"urgent", "asap", "critical", "action required", "outage",
		"important", "immediately",
	},
	MediumUrgencyKeywords: []string{
		"please review", "feedback needed", "deadline", "reminder",
		"follow-up", "question",
	},
	HighKeywordBonus:   25,
	MediumKeywordBonus: 15,

	MeetingTargetDayBase:    40,
	MeetingProximityPerHour: 2.5,
	MeetingProximityCap:     40,
	MeetingWithinHourBonus:  5,
	MeetingWithin3HrsBonus:  3,
	MeetingSmallGroupBonus:  20,
	MeetingMidGroupBonus:    10,

	TaskOverdueBase:         80,
	TaskDueTodayBase:        70,
	TaskDueSoonBase:         50,
	TaskDueLaterBase:        30,
	TaskNoDueDateBase:       25,
	TaskDueSoonDays:         3,
	TaskLaterPriorityCap:    5,
	TaskRecentActivityBonus: 5,
	TaskRecentActivityDays:  7,
	TaskPriorityBonus: map[string]float64{
		notion.PriorityHigh:   10,
		notion.PriorityMedium: 5,
		notion.PriorityLow:    0,
	},

	EmailBase:            50,
	EmailRecentBonus:     5,
	EmailRecentWindowHrs: 4,
	ChatBase:             45,
	ChatRecentBonus:      5,
	ChatRecentWindowHrs:  2,
	UnknownTypeBase:      20,
}

// Scorer assigns 0-100 urgency scores to briefing items.
type Scorer struct {
	cfg ScorerConfig
	now func() time.Time
}

// NewScorer creates a scorer with the given tuning.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

func (s *Scorer) keywordBonus(item Item) float64 {
	text := strings.ToLower(item.Title + " " + item.Details)
	for _, kw := range s.cfg.HighUrgencyKeywords {
		if strings.Contains(text, kw) {
			return s.cfg.HighKeywordBonus
		}
	}
	for _, kw := range s.cfg.MediumUrgencyKeywords {
		if strings.Contains(text, kw) {
			return s.cfg.MediumKeywordBonus
		}
	}
	return 0
}

// Score computes the urgency of one item relative to the briefing's target
// date. The result is always an integer in [0, 100], even for partial
// payloads. Keyword bonuses apply to emails and chat messages only;
// meetings are scored purely on schedule and tasks on due date and
// priority.
func (s *Scorer) Score(item Item, targetDate time.Time) int {
	now := s.now()
	targetISO := utcDateISO(targetDate)
	targetIsToday := targetISO == utcDateISO(now)

	score := 0.0

	switch item.Type {
	case ItemTypeMeeting:
		meeting := item.Meeting
		if meeting == nil || meeting.StartTime.IsZero() {
			break
		}
		start := meeting.StartTime.UTC()
		if utcDateISO(start) != targetISO {
			break
		}
		score += s.cfg.MeetingTargetDayBase

		// Earlier meetings on the target day are more pressing: the bonus
		// decays linearly from the cap at midnight to zero at hour 24.
		hourOfDay := float64(start.Hour()) + float64(start.Minute())/60
		proximity := math.Max(0, (24-hourOfDay)*s.cfg.MeetingProximityPerHour)
		score += math.Min(proximity, s.cfg.MeetingProximityCap)

		if targetIsToday && start.After(now) {
			switch hoursUntil := start.Sub(now).Hours(); {
			case hoursUntil < 1:
				score += s.cfg.MeetingWithinHourBonus
			case hoursUntil < 3:
				score += s.cfg.MeetingWithin3HrsBonus
			}
		}

		if n := len(meeting.Attendees); n <= 2 {
			score += s.cfg.MeetingSmallGroupBonus
		} else if n <= 5 {
			score += s.cfg.MeetingMidGroupBonus
		}

	case ItemTypeTask:
		task := item.Task
		if task == nil {
			break
		}
		if task.Status == notion.StatusDone || task.Status == notion.StatusCancelled {
			return 0
		}
		priorityBonus := s.cfg.TaskPriorityBonus[task.Priority]

		if task.DueDate != nil {
			dueISO := utcDateISO(*task.DueDate)
			switch {
			case dueISO < targetISO:
				score = s.cfg.TaskOverdueBase + priorityBonus
			case dueISO == targetISO:
				score = s.cfg.TaskDueTodayBase + priorityBonus
			default:
				diffDays := startOfDayUTC(*task.DueDate).Sub(startOfDayUTC(targetDate)).Hours() / 24
				if diffDays <= float64(s.cfg.TaskDueSoonDays) {
					score = s.cfg.TaskDueSoonBase + priorityBonus
				} else {
					score = s.cfg.TaskDueLaterBase
					if priorityBonus > 0 {
						score += math.Min(s.cfg.TaskLaterPriorityCap, priorityBonus)
					}
				}
			}
		} else {
			score = s.cfg.TaskNoDueDateBase + priorityBonus
			activity := task.LastEditedTime
			if activity == nil && !task.CreatedDate.IsZero() {
				activity = &task.CreatedDate
			}
			if activity != nil {
				daysSince := now.Sub(*activity).Hours() / 24
				if daysSince <= float64(s.cfg.TaskRecentActivityDays) {
					score += s.cfg.TaskRecentActivityBonus
				}
			}
		}

	case ItemTypeEmail:
		score = s.cfg.EmailBase + s.keywordBonus(item)
		if item.Email != nil && item.Email.Date != nil && targetIsToday {
			hoursAgo := now.Sub(*item.Email.Date).Hours()
			if hoursAgo >= 0 && hoursAgo < s.cfg.EmailRecentWindowHrs {
				score += s.cfg.EmailRecentBonus
			}
		}

	case ItemTypeSlack:
		score = s.cfg.ChatBase + s.keywordBonus(item)
		if item.Slack != nil && item.Slack.Timestamp != nil && targetIsToday {
			hoursAgo := now.Sub(*item.Slack.Timestamp).Hours()
			if hoursAgo >= 0 && hoursAgo < s.cfg.ChatRecentWindowHrs {
				score += s.cfg.ChatRecentBonus
			}
		}

	case ItemTypeTeams:
		score = s.cfg.ChatBase + s.keywordBonus(item)
		if item.Teams != nil && item.Teams.CreatedDateTime != nil && targetIsToday {
			hoursAgo := now.Sub(*item.Teams.CreatedDateTime).Hours()
			if hoursAgo >= 0 && hoursAgo < s.cfg.ChatRecentWindowHrs {
				score += s.cfg.ChatRecentBonus
			}
		}

	default:
		score = s.cfg.UnknownTypeBase
	}

	rounded := math.Round(score)
	if rounded > 100 {
		rounded = 100
	}
	if rounded < 0 {
		rounded = 0
	}
	return int(rounded)
}
