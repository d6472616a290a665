package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventFetcher is a test double for EventFetcher that records the last
// query and returns canned results.
type fakeEventFetcher struct {
	events []CalendarEventSummary
	err    error

	lastUserID  string
	lastLimit   int
	lastTimeMin time.Time
	lastTimeMax time.Time
}

func (f *fakeEventFetcher) ListUpcomingEvents(_ context.Context, userID string, limit int, timeMin, timeMax time.Time) ([]CalendarEventSummary, error) {
	f.lastUserID = userID
	f.lastLimit = limit
	f.lastTimeMin = timeMin
	f.lastTimeMax = timeMax
	return f.events, f.err
}

func newTestFinder(fetcher EventFetcher, now time.Time) *Finder {
	f := NewFinder(fetcher, DefaultFinderConfig)
	f.now = func() time.Time { return now }
	return f
}

func dayAt(hour int) time.Time {
	return time.Date(2025, time.June, 10, hour, 0, 0, 0, time.UTC)
}

func TestResolveSearchWindow(t *testing.T) {
	now := time.Date(2025, time.June, 10, 15, 30, 0, 0, time.UTC)
	specific := time.Date(2025, time.June, 20, 11, 0, 0, 0, time.UTC)
	start := time.Date(2025, time.June, 12, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.June, 18, 17, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		hints     *DateHints
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "no hints opens default forward window",
			hints:     nil,
			wantStart: time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.June, 24, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "specific date bounds that day",
			hints:     &DateHints{SpecificDate: &specific},
			wantStart: time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.June, 20, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "start and end used as given",
			hints:     &DateHints{StartDate: &start, EndDate: &end},
			wantStart: start,
			wantEnd:   end,
		},
		{
			name:      "start only opens forward window",
			hints:     &DateHints{StartDate: &start},
			wantStart: start,
			wantEnd:   time.Date(2025, time.June, 26, 23, 59, 59, 999000000, time.UTC),
		},
		{
			name:      "end only opens backward window",
			hints:     &DateHints{EndDate: &end},
			wantStart: time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC),
			wantEnd:   end,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd := ResolveSearchWindow(tt.hints, now, DefaultFinderConfig.DefaultWindowDays)
			assert.Equal(t, tt.wantStart, gotStart)
			assert.Equal(t, tt.wantEnd, gotEnd)
			assert.False(t, gotEnd.Before(gotStart))
		})
	}
}

func TestExtractKeywords(t *testing.T) {
	cfg := DefaultFinderConfig

	tests := []struct {
		name      string
		reference string
		expected  []string
	}{
		{
			name:      "stop words and short tokens dropped",
			reference: "the meeting with Sarah on Tuesday",
			expected:  []string{"meeting", "sarah", "tuesday"},
		},
		{
			name:      "punctuation splits tokens",
			reference: "budget-review: Q3 planning!",
			expected:  []string{"budget", "review", "planning"},
		},
		{
			name:      "short tokens restored when nothing survives",
			reference: "1:1",
			expected:  []string{"1", "1"},
		},
		{
			name:      "raw tokens restored when all are stop words",
			reference: "the and with",
			expected:  []string{"the", "and", "with"},
		},
		{
			name:      "empty reference yields nothing",
			reference: "",
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.ExtractKeywords(tt.reference))
		})
	}
}

func TestScoreEventExactTitle(t *testing.T) {
	cfg := DefaultFinderConfig
	keywords := cfg.ExtractKeywords("Project Alpha Review")
	event := CalendarEventSummary{ID: "ev1", Title: "Project Alpha Review"}

	score := cfg.ScoreEvent(keywords, event)

	// Exact title match scores 1.0 base plus one title bonus per keyword.
	assert.InDelta(t, 1.0+3*cfg.TitleKeywordBonus, score, 1e-9)
	assert.GreaterOrEqual(t, score, 1.0)
}

func TestScoreEventBonusCaps(t *testing.T) {
	cfg := DefaultFinderConfig
	keywords := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta"}
	event := CalendarEventSummary{
		Title:       "alpha beta gamma delta epsilon zeta eta",
		Description: "alpha beta gamma delta epsilon zeta eta",
	}

	score := cfg.ScoreEvent(keywords, event)
	base := Similarity("alpha beta gamma delta epsilon zeta eta", event.Title)

	// Seven keyword hits in title and description, but both bonuses cap out.
	assert.InDelta(t, base+cfg.MaxTitleBonus+cfg.MaxDescriptionBonus, score, 1e-9)
}

func TestScoreEventAttendeeBonus(t *testing.T) {
	cfg := DefaultFinderConfig
	keywords := []string{"sarah", "sync"}
	event := CalendarEventSummary{
		Title: "Weekly Sync",
		Attendees: []string{
			"Sarah <sarah@example.com>",
			"Sara <sara.h@example.com>",
		},
	}

	withAttendees := cfg.ScoreEvent(keywords, event)
	event.Attendees = nil
	withoutAttendees := cfg.ScoreEvent(keywords, event)

	// "sarah" matches attendee names, but only contributes once even though
	// two attendees match.
	assert.InDelta(t, cfg.AttendeeMatchBonus, withAttendees-withoutAttendees, 1e-9)
}

func TestFindEventByFuzzyReferenceNoCandidates(t *testing.T) {
	fetcher := &fakeEventFetcher{}
	finder := newTestFinder(fetcher, dayAt(8))

	event, err := finder.FindEventByFuzzyReference(context.Background(), "user-1", "team sync", nil)

	require.NoError(t, err)
	assert.Nil(t, event)
	assert.Equal(t, "user-1", fetcher.lastUserID)
	assert.Equal(t, findEventFetchLimit, fetcher.lastLimit)
	assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), fetcher.lastTimeMin)
	assert.Equal(t, time.Date(2025, time.June, 24, 23, 59, 59, 999000000, time.UTC), fetcher.lastTimeMax)
}

func TestFindEventByFuzzyReferenceFetchError(t *testing.T) {
	fetcher := &fakeEventFetcher{err: errors.New("calendar unavailable")}
	finder := newTestFinder(fetcher, dayAt(8))

	event, err := finder.FindEventByFuzzyReference(context.Background(), "user-1", "team sync", nil)

	require.Error(t, err)
	assert.Nil(t, event)
	assert.Contains(t, err.Error(), "calendar unavailable")
}

func TestFindEventByFuzzyReferenceExactTitleWins(t *testing.T) {
	fetcher := &fakeEventFetcher{events: []CalendarEventSummary{
		{ID: "ev1", Title: "Team Standup", StartTime: dayAt(9)},
		{ID: "ev2", Title: "Project Alpha Review", StartTime: dayAt(14)},
		{ID: "ev3", Title: "Project Beta Kickoff", StartTime: dayAt(16)},
	}}
	finder := newTestFinder(fetcher, dayAt(8))

	event, err := finder.FindEventByFuzzyReference(context.Background(), "user-1", "Project Alpha Review", nil)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "ev2", event.ID)
}

func TestFindEventByFuzzyReferenceKeywordRichWins(t *testing.T) {
	// The first candidate has higher raw title similarity to the reference,
	// but the second accumulates keyword bonuses from its title, description
	// and attendee list.
	fetcher := &fakeEventFetcher{events: []CalendarEventSummary{
		{
			ID:        "ev1",
			Title:     "Discussing quarterly numbers",
			StartTime: dayAt(10),
		},
		{
			ID:          "ev2",
			Title:       "Next Meeting with Client X",
			StartTime:   dayAt(13),
			Description: "Client discussion about the Client X account",
			Attendees:   []string{"Client X <clientx@example.com>"},
		},
		{
			ID:        "ev3",
			Title:     "Team Lunch",
			StartTime: dayAt(12),
		},
	}}
	finder := newTestFinder(fetcher, dayAt(8))

	event, err := finder.FindEventByFuzzyReference(context.Background(), "user-1", "client x discussion", nil)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "ev2", event.ID)
}

func TestFindEventByFuzzyReferenceBelowThreshold(t *testing.T) {
	fetcher := &fakeEventFetcher{events: []CalendarEventSummary{
		{ID: "ev1", Title: "Yoga Class", StartTime: dayAt(18)},
		{ID: "ev2", Title: "Dentist Appointment", StartTime: dayAt(11)},
	}}
	finder := newTestFinder(fetcher, dayAt(8))

	event, err := finder.FindEventByFuzzyReference(context.Background(), "user-1", "quarterly budget review", nil)

	require.NoError(t, err)
	assert.Nil(t, event)
}

func TestFindEventByFuzzyReferenceTieBreakEarlierStart(t *testing.T) {
	// Identical titles score identically; the earlier event wins regardless
	// of candidate order.
	fetcher := &fakeEventFetcher{events: []CalendarEventSummary{
		{ID: "later", Title: "Design Review", StartTime: dayAt(15)},
		{ID: "earlier", Title: "Design Review", StartTime: dayAt(9)},
	}}
	finder := newTestFinder(fetcher, dayAt(8))

	event, err := finder.FindEventByFuzzyReference(context.Background(), "user-1", "design review", nil)

	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "earlier", event.ID)
}
