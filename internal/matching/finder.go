package matching

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"assistant-agent/internal/logger"
)

// CalendarEventSummary is a candidate event for fuzzy matching. Instances are
// constructed by the calendar collaborator per query and never mutated.
type CalendarEventSummary struct {
	ID          string
	Title       string
	StartTime   time.Time
	EndTime     time.Time
	Description string
	Attendees   []string
	Location    string
	Organizer   string
	HTMLLink    string
}

// DateHints narrows the search window for a fuzzy event lookup.
// SpecificDate wins over StartDate/EndDate; a lone StartDate opens a forward
// window, a lone EndDate a backward one.
type DateHints struct {
	SpecificDate *time.Time
	StartDate    *time.Time
	EndDate      *time.Time
}

// EventFetcher supplies candidate events for a user within a time window.
type EventFetcher interface {
	ListUpcomingEvents(ctx context.Context, userID string, limit int, timeMin, timeMax time.Time) ([]CalendarEventSummary, error)
}

// findEventFetchLimit bounds how many candidates a single lookup considers.
const findEventFetchLimit = 50

// Finder resolves fuzzy meeting references against a user's calendar.
type Finder struct {
	fetcher EventFetcher
	cfg     FinderConfig
	now     func() time.Time
}

// NewFinder creates a finder with the given fetcher and config.
func NewFinder(fetcher EventFetcher, cfg FinderConfig) *Finder {
	return &Finder{
		fetcher: fetcher,
		cfg:     cfg,
		now:     time.Now,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ResolveSearchWindow determines the [start, end] window for candidate
// fetching from optional date hints. The resolved window always satisfies
// start <= end, with day boundaries applied when derived from a single hint.
func ResolveSearchWindow(hints *DateHints, now time.Time, windowDays int) (time.Time, time.Time) {
	switch {
	case hints != nil && hints.SpecificDate != nil:
		return startOfDay(*hints.SpecificDate), endOfDay(*hints.SpecificDate)
	case hints != nil && hints.StartDate != nil && hints.EndDate != nil:
		return *hints.StartDate, *hints.EndDate
	case hints != nil && hints.StartDate != nil:
		return *hints.StartDate, endOfDay(hints.StartDate.AddDate(0, 0, windowDays))
	case hints != nil && hints.EndDate != nil:
		return startOfDay(hints.EndDate.AddDate(0, 0, -windowDays)), *hints.EndDate
	default:
		return startOfDay(now), endOfDay(now.AddDate(0, 0, windowDays))
	}
}

var tokenSplitRegex = regexp.MustCompile(`[^a-z0-9]+`)

// ExtractKeywords tokenizes a meeting reference into scoring keywords.
// Stop words and tokens shorter than MinKeywordLength are dropped, but never
// to the point of leaving an empty keyword set for a non-empty reference:
// short tokens are restored first, then the raw tokens themselves.
func (c FinderConfig) ExtractKeywords(reference string) []string {
	lower := strings.ToLower(reference)

	var raw []string
	for _, w := range tokenSplitRegex.Split(lower, -1) {
		if w != "" {
			raw = append(raw, w)
		}
	}

	var keywords []string
	for _, w := range raw {
		if !stopWords[w] && len(w) >= c.MinKeywordLength {
			keywords = append(keywords, w)
		}
	}

	if len(keywords) == 0 && len(raw) > 0 {
		// Everything was a stop word or too short; fall back to the short
		// tokens so references like "1:1" still produce keywords.
		for _, w := range raw {
			if len(w) < c.MinKeywordLength {
				keywords = append(keywords, w)
			}
		}
		if len(keywords) == 0 {
			keywords = append(keywords, raw...)
		}
	}

	return keywords
}

// ScoreEvent computes the combined match score for one candidate: base n-gram
// similarity between the joined keywords and the title, plus capped bonuses
// for keyword presence in the title and description and for keyword-attendee
// name matches. The result can exceed 1.0; there is no final clamp.
func (c FinderConfig) ScoreEvent(keywords []string, event CalendarEventSummary) float64 {
	joined := strings.Join(keywords, " ")
	titleLower := strings.ToLower(event.Title)
	descriptionLower := strings.ToLower(event.Description)

	score := Similarity(joined, titleLower)

	titleBonus := 0.0
	for _, kw := range keywords {
		if strings.Contains(titleLower, kw) {
			titleBonus += c.TitleKeywordBonus
		}
	}
	score += math.Min(titleBonus, c.MaxTitleBonus)

	descriptionBonus := 0.0
	for _, kw := range keywords {
		if strings.Contains(descriptionLower, kw) {
			descriptionBonus += c.DescriptionKeywordBonus
		}
	}
	score += math.Min(descriptionBonus, c.MaxDescriptionBonus)

	attendeeBonus := 0.0
	if len(event.Attendees) > 0 {
		// Each keyword contributes at most once, even if it matches several
		// attendees.
		matched := make(map[string]bool)
		for _, attendee := range event.Attendees {
			name := ExtractAttendeeName(attendee)
			if name == "" {
				continue
			}
			for _, kw := range keywords {
				if matched[kw] {
					continue
				}
				if Similarity(kw, name) > c.AttendeeNameThreshold {
					attendeeBonus += c.AttendeeMatchBonus
					matched[kw] = true
				}
			}
		}
	}
	score += math.Min(attendeeBonus, c.MaxAttendeeBonus)

	return score
}

// FindEventByFuzzyReference resolves a natural-language meeting reference to
// a calendar event. Returns (nil, nil) when no candidate reaches the minimum
// score threshold or when the search window holds no events.
func (f *Finder) FindEventByFuzzyReference(ctx context.Context, userID, reference string, hints *DateHints) (*CalendarEventSummary, error) {
	windowStart, windowEnd := ResolveSearchWindow(hints, f.now(), f.cfg.DefaultWindowDays)

	logger.Debug().
		Str("user_id", userID).
		Str("reference", reference).
		Time("window_start", windowStart).
		Time("window_end", windowEnd).
		Msg("resolving fuzzy event reference")

	events, err := f.fetcher.ListUpcomingEvents(ctx, userID, findEventFetchLimit, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("list candidate events: %w", err)
	}
	if len(events) == 0 {
		logger.Debug().Str("user_id", userID).Msg("no events in search window")
		return nil, nil
	}

	keywords := f.cfg.ExtractKeywords(reference)

	var best *CalendarEventSummary
	highest := 0.0
	for i := range events {
		event := &events[i]
		score := f.cfg.ScoreEvent(keywords, *event)

		if score > highest {
			highest = score
			best = event
		} else if score == highest && score > f.cfg.TieBreakFloor &&
			best != nil && event.StartTime.Before(best.StartTime) {
			// Tied scores prefer the event that starts sooner.
			best = event
		}
	}

	if best == nil || highest < f.cfg.MinScoreThreshold {
		logger.Debug().
			Str("reference", reference).
			Float64("best_score", highest).
			Float64("threshold", f.cfg.MinScoreThreshold).
			Msg("no event met the minimum score threshold")
		return nil, nil
	}

	logger.Debug().
		Str("event_id", best.ID).
		Str("title", best.Title).
		Float64("score", highest).
		Msg("fuzzy reference resolved")
	return best, nil
}
