package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"assistant-agent/internal/hasura"
	"assistant-agent/internal/logger"
	"assistant-agent/internal/matching"
)

// CalendarClient lists a user's Google Calendar events.
type CalendarClient struct {
	oauth *OAuthService
}

// NewCalendarClient creates a calendar client on top of the OAuth service.
func NewCalendarClient(oauth *OAuthService) *CalendarClient {
	return &CalendarClient{oauth: oauth}
}

// ListUpcomingEvents returns events from the user's primary calendar within
// [timeMin, timeMax], ordered by start time. A user who has not connected
// Google gets an empty list, not an error, so briefing and lookup flows
// degrade to "no events" instead of failing.
func (c *CalendarClient) ListUpcomingEvents(ctx context.Context, userID string, limit int, timeMin, timeMax time.Time) ([]matching.CalendarEventSummary, error) {
	client, err := c.oauth.ClientForUser(ctx, userID)
	if errors.Is(err, hasura.ErrTokenNotFound) {
		logger.Warn().Str("user_id", userID).Msg("no Google tokens for user, returning no events")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get OAuth client: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	resp, err := svc.Events.List("primary").
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]matching.CalendarEventSummary, 0, len(resp.Items))
	for _, item := range resp.Items {
		summary, err := eventSummary(item)
		if err != nil {
			logger.Warn().Err(err).Str("event_id", item.Id).Msg("skipping unparsable event")
			continue
		}
		events = append(events, summary)
	}
	return events, nil
}

func eventSummary(event *calendar.Event) (matching.CalendarEventSummary, error) {
	startTime, err := parseEventTime(event.Start)
	if err != nil {
		return matching.CalendarEventSummary{}, fmt.Errorf("parse start time: %w", err)
	}
	endTime, err := parseEventTime(event.End)
	if err != nil {
		return matching.CalendarEventSummary{}, fmt.Errorf("parse end time: %w", err)
	}

	attendees := make([]string, 0, len(event.Attendees))
	for _, a := range event.Attendees {
		if a.DisplayName != "" && a.Email != "" {
			attendees = append(attendees, fmt.Sprintf("%s <%s>", a.DisplayName, a.Email))
		} else if a.Email != "" {
			attendees = append(attendees, a.Email)
		} else if a.DisplayName != "" {
			attendees = append(attendees, a.DisplayName)
		}
	}

	organizer := ""
	if event.Organizer != nil {
		organizer = event.Organizer.Email
	}

	return matching.CalendarEventSummary{
		ID:          event.Id,
		Title:       event.Summary,
		StartTime:   startTime,
		EndTime:     endTime,
		Description: event.Description,
		Attendees:   attendees,
		Location:    event.Location,
		Organizer:   organizer,
		HTMLLink:    event.HtmlLink,
	}, nil
}

// parseEventTime handles both timed events (DateTime) and all-day events
// (Date at midnight UTC).
func parseEventTime(edt *calendar.EventDateTime) (time.Time, error) {
	if edt == nil {
		return time.Time{}, nil
	}
	if edt.DateTime != "" {
		return time.Parse(time.RFC3339, edt.DateTime)
	}
	if edt.Date != "" {
		return time.Parse("2006-01-02", edt.Date)
	}
	return time.Time{}, nil
}
