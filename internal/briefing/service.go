package briefing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"assistant-agent/internal/google"
	"assistant-agent/internal/logger"
	"assistant-agent/internal/matching"
	"assistant-agent/internal/msteams"
	"assistant-agent/internal/notion"
	"assistant-agent/internal/slack"
)

// Per-briefing fetch limits. Tasks are queried twice (overdue and due on
// the target day) at taskFetchLimit each.
const (
	taskFetchLimit    = 10
	meetingFetchLimit = 10
	messageFetchLimit = 3
)

// CalendarSource supplies events for the briefing's target-day window.
type CalendarSource interface {
	ListUpcomingEvents(ctx context.Context, userID string, limit int, timeMin, timeMax time.Time) ([]matching.CalendarEventSummary, error)
}

// TaskSource queries the user's task database.
type TaskSource interface {
	QueryTasks(ctx context.Context, userID string, q notion.TaskQuery) ([]notion.Task, error)
}

// EmailSource supplies recent unread emails for the target day.
type EmailSource interface {
	RecentUnreadForBriefing(ctx context.Context, userID string, targetDate time.Time, limit int) ([]google.GmailMessageSnippet, error)
}

// SlackSource supplies recent DMs and mentions for the target day.
type SlackSource interface {
	RecentDMsAndMentionsForBriefing(ctx context.Context, userID string, targetDate time.Time, limit int) ([]slack.MessageSnippet, error)
}

// TeamsSource supplies recent chats and mentions for the target day.
type TeamsSource interface {
	RecentChatsAndMentionsForBriefing(ctx context.Context, userID string, targetDate time.Time, limit int) ([]msteams.Message, error)
}

// Service generates daily briefings. Any source may be nil; requesting a
// focus area whose source is missing yields a SourceError instead of items.
type Service struct {
	calendar CalendarSource
	tasks    TaskSource
	emails   EmailSource
	slack    SlackSource
	teams    TeamsSource
	scorer   *Scorer
	now      func() time.Time
}

// NewService wires a briefing service from its sources.
func NewService(calendar CalendarSource, tasks TaskSource, emails EmailSource, slackSrc SlackSource, teams TeamsSource, scorer *Scorer) *Service {
	return &Service{
		calendar: calendar,
		tasks:    tasks,
		emails:   emails,
		slack:    slackSrc,
		teams:    teams,
		scorer:   scorer,
		now:      time.Now,
	}
}

// Generate assembles a briefing for the user. Source failures never abort
// the briefing; they are collected into ErrorsEncountered and the rest of
// the result is still returned.
func (s *Service) Generate(ctx context.Context, userID string, req Request) (*Briefing, error) {
	parsed := ParseDateContext(req.DateContext, s.now())

	logger.Info().
		Str("user_id", userID).
		Str("date_context", req.DateContext).
		Str("target_date", parsed.TargetDateISO).
		Msg("generating daily briefing")

	briefing := &Briefing{
		BriefingDate:  parsed.TargetDateISO,
		UserID:        userID,
		PriorityItems: []Item{},
	}
	if parsed.WarningMessage != "" {
		briefing.ErrorsEncountered = append(briefing.ErrorsEncountered, SourceError{
			SourceArea: "date_parsing",
			Message:    parsed.WarningMessage,
			Details:    fmt.Sprintf("Original input: %s", parsed.OriginalInput),
		})
	}

	focus := req.FocusAreas
	if len(focus) == 0 {
		focus = DefaultFocusAreas
	}

	var (
		tasks      []notion.Task
		taskErrs   []SourceError
		meetings   []matching.CalendarEventSummary
		meetingErr *SourceError
		emails     []google.GmailMessageSnippet
		emailErr   *SourceError
		slackMsgs  []slack.MessageSnippet
		slackErr   *SourceError
		teamsMsgs  []msteams.Message
		teamsErr   *SourceError
	)

	g, gctx := errgroup.WithContext(ctx)

	if hasFocus(focus, FocusTasks) {
		if s.tasks == nil {
			taskErrs = append(taskErrs, SourceError{
				SourceArea: "tasks",
				Message:    "Notion tasks database is not configured.",
			})
		} else {
			g.Go(func() error {
				tasks, taskErrs = s.fetchTasks(gctx, userID, req, parsed)
				return nil
			})
		}
	}

	if hasFocus(focus, FocusMeetings) {
		if s.calendar == nil {
			meetingErr = &SourceError{SourceArea: "meetings", Message: "Calendar source is not configured."}
		} else {
			g.Go(func() error {
				events, err := s.calendar.ListUpcomingEvents(gctx, userID, meetingFetchLimit, parsed.TimeMin, parsed.TimeMax)
				if err != nil {
					meetingErr = &SourceError{SourceArea: "meetings", Message: fmt.Sprintf("Error fetching calendar events: %v", err)}
					return nil
				}
				meetings = events
				return nil
			})
		}
	}

	if hasFocus(focus, FocusUrgentEmails) {
		if s.emails == nil {
			emailErr = &SourceError{SourceArea: "emails", Message: "Email source is not configured."}
		} else {
			g.Go(func() error {
				msgs, err := s.emails.RecentUnreadForBriefing(gctx, userID, parsed.TargetDate, messageFetchLimit)
				if err != nil {
					emailErr = &SourceError{SourceArea: "emails", Message: fmt.Sprintf("Error fetching urgent emails: %v", err)}
					return nil
				}
				emails = msgs
				return nil
			})
		}
	}

	if hasFocus(focus, FocusUrgentSlack) {
		if s.slack == nil {
			slackErr = &SourceError{SourceArea: "slack", Message: "Slack source is not configured."}
		} else {
			g.Go(func() error {
				msgs, err := s.slack.RecentDMsAndMentionsForBriefing(gctx, userID, parsed.TargetDate, messageFetchLimit)
				if err != nil {
					slackErr = &SourceError{SourceArea: "slack", Message: fmt.Sprintf("Error fetching urgent Slack messages: %v", err)}
					return nil
				}
				slackMsgs = msgs
				return nil
			})
		}
	}

	if hasFocus(focus, FocusUrgentTeams) {
		if s.teams == nil {
			teamsErr = &SourceError{SourceArea: "teams", Message: "MS Teams source is not configured."}
		} else {
			g.Go(func() error {
				msgs, err := s.teams.RecentChatsAndMentionsForBriefing(gctx, userID, parsed.TargetDate, messageFetchLimit)
				if err != nil {
					teamsErr = &SourceError{SourceArea: "teams", Message: fmt.Sprintf("Error fetching urgent MS Teams messages: %v", err)}
					return nil
				}
				teamsMsgs = msgs
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return briefing, err
	}

	briefing.ErrorsEncountered = append(briefing.ErrorsEncountered, taskErrs...)
	for _, e := range []*SourceError{meetingErr, emailErr, slackErr, teamsErr} {
		if e != nil {
			briefing.ErrorsEncountered = append(briefing.ErrorsEncountered, *e)
		}
	}

	now := s.now()
	for i := range tasks {
		task := tasks[i]
		item := Item{
			Type:     ItemTypeTask,
			Title:    task.Description,
			Details:  taskDetails(task, parsed.TargetDateISO, now),
			Link:     task.URL,
			SourceID: task.ID,
			Task:     &tasks[i],
		}
		item.UrgencyScore = s.scorer.Score(item, parsed.TargetDate)
		briefing.PriorityItems = append(briefing.PriorityItems, item)
	}
	for i := range meetings {
		meeting := meetings[i]
		title := meeting.Title
		if title == "" {
			title = "Untitled Meeting"
		}
		item := Item{
			Type:     ItemTypeMeeting,
			Title:    title,
			Details:  meetingDetails(meeting),
			Link:     meeting.HTMLLink,
			SourceID: meeting.ID,
			Meeting:  &meetings[i],
		}
		item.UrgencyScore = s.scorer.Score(item, parsed.TargetDate)
		briefing.PriorityItems = append(briefing.PriorityItems, item)
	}
	for i := range emails {
		email := emails[i]
		title := email.Subject
		if title == "" {
			title = "No Subject"
		}
		item := Item{
			Type:     ItemTypeEmail,
			Title:    title,
			Details:  emailDetails(email),
			Link:     email.Link,
			SourceID: email.ID,
			Email:    &emails[i],
		}
		item.UrgencyScore = s.scorer.Score(item, parsed.TargetDate)
		briefing.PriorityItems = append(briefing.PriorityItems, item)
	}
	for i := range slackMsgs {
		msg := slackMsgs[i]
		item := Item{
			Type:     ItemTypeSlack,
			Title:    slackMessageTitle(msg),
			Details:  truncateText(msg.Text, 100),
			Link:     msg.Permalink,
			SourceID: msg.ID,
			Slack:    &slackMsgs[i],
		}
		item.UrgencyScore = s.scorer.Score(item, parsed.TargetDate)
		briefing.PriorityItems = append(briefing.PriorityItems, item)
	}
	for i := range teamsMsgs {
		msg := teamsMsgs[i]
		item := Item{
			Type:     ItemTypeTeams,
			Title:    teamsMessageTitle(msg),
			Details:  truncateText(msg.Content, 100),
			Link:     msg.WebURL,
			SourceID: msg.ID,
			Teams:    &teamsMsgs[i],
		}
		item.UrgencyScore = s.scorer.Score(item, parsed.TargetDate)
		briefing.PriorityItems = append(briefing.PriorityItems, item)
	}

	sortItems(briefing.PriorityItems)

	briefing.OverallSummary = s.summaryMessage(briefing, parsed, focus)

	logger.Info().
		Str("user_id", userID).
		Int("items", len(briefing.PriorityItems)).
		Int("source_errors", len(briefing.ErrorsEncountered)).
		Msg("daily briefing generated")

	return briefing, nil
}

// fetchTasks runs the overdue and due-on-target queries concurrently and
// merges their results, dropping duplicates by task ID.
func (s *Service) fetchTasks(ctx context.Context, userID string, req Request, parsed ParsedDateContext) ([]notion.Task, []SourceError) {
	base := notion.TaskQuery{
		StatusNotEquals: []string{notion.StatusDone, notion.StatusCancelled},
		Limit:           taskFetchLimit,
		ListName:        req.ProjectFilter,
	}
	if req.UrgencyLevel == "high" || req.UrgencyLevel == "critical" {
		base.Priority = req.UrgencyLevel
	}

	overdueQuery := base
	overdueQuery.DueDateBefore = parsed.TargetDateISO
	dueOnQuery := base
	dueOnQuery.DueDateEquals = parsed.TargetDateISO

	var (
		overdue    []notion.Task
		overdueErr error
		dueOn      []notion.Task
		dueOnErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overdue, overdueErr = s.tasks.QueryTasks(gctx, userID, overdueQuery)
		return nil
	})
	g.Go(func() error {
		dueOn, dueOnErr = s.tasks.QueryTasks(gctx, userID, dueOnQuery)
		return nil
	})
	_ = g.Wait()

	var errs []SourceError
	if overdueErr != nil {
		errs = append(errs, SourceError{
			SourceArea: "tasks",
			Message:    fmt.Sprintf("Error fetching overdue tasks (before %s): %v", parsed.TargetDateISO, overdueErr),
		})
	}
	if dueOnErr != nil {
		errs = append(errs, SourceError{
			SourceArea: "tasks",
			Message:    fmt.Sprintf("Error fetching tasks due on %s: %v", parsed.TargetDateISO, dueOnErr),
		})
	}

	merged := overdue
	seen := make(map[string]bool, len(overdue))
	for _, t := range overdue {
		seen[t.ID] = true
	}
	for _, t := range dueOn {
		if !seen[t.ID] {
			merged = append(merged, t)
			seen[t.ID] = true
		}
	}

	sortTasks(merged, parsed.TargetDateISO)
	return merged, errs
}

// sortTasks orders fetched tasks overdue-first, then by priority, then by
// earliest due date.
func sortTasks(tasks []notion.Task, targetDateISO string) {
	rank := map[string]int{notion.PriorityHigh: 1, notion.PriorityMedium: 2, notion.PriorityLow: 3}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		aOverdue := a.DueDate != nil && utcDateISO(*a.DueDate) < targetDateISO
		bOverdue := b.DueDate != nil && utcDateISO(*b.DueDate) < targetDateISO
		if aOverdue != bOverdue {
			return aOverdue
		}
		aRank, ok := rank[a.Priority]
		if !ok {
			aRank = 3
		}
		bRank, ok := rank[b.Priority]
		if !ok {
			bRank = 3
		}
		if aRank != bRank {
			return aRank < bRank
		}
		return dueUnix(a.DueDate) < dueUnix(b.DueDate)
	})
}

// sortItems orders briefing items by descending urgency, with type-specific
// tie-breaks and a fixed cross-type ordering for residual ties.
func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.UrgencyScore != b.UrgencyScore {
			return a.UrgencyScore > b.UrgencyScore
		}
		switch {
		case a.Type == ItemTypeMeeting && b.Type == ItemTypeMeeting:
			return meetingStartUnix(a) < meetingStartUnix(b)
		case a.Type == ItemTypeTask && b.Type == ItemTypeTask:
			aDue, bDue := dueUnix(taskDue(a)), dueUnix(taskDue(b))
			if aDue != bDue {
				return aDue < bDue
			}
			return false
		case a.Type == ItemTypeEmail && b.Type == ItemTypeEmail:
			return emailDateUnix(a) > emailDateUnix(b)
		default:
			return typePriority(a.Type) < typePriority(b.Type)
		}
	})
}

func meetingStartUnix(item Item) int64 {
	if item.Meeting == nil || item.Meeting.StartTime.IsZero() {
		return 0
	}
	return item.Meeting.StartTime.UnixMilli()
}

func taskDue(item Item) *time.Time {
	if item.Task == nil {
		return nil
	}
	return item.Task.DueDate
}

func dueUnix(due *time.Time) int64 {
	if due == nil {
		return int64(1<<63 - 1)
	}
	return due.UnixMilli()
}

func emailDateUnix(item Item) int64 {
	if item.Email == nil || item.Email.Date == nil {
		return 0
	}
	return item.Email.Date.UnixMilli()
}

// truncateText shortens message text for item titles, counting runes so a
// multibyte character is never split.
func truncateText(text string, max int) string {
	if text == "" {
		return "(No text content)"
	}
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return text
}

func taskDetails(task notion.Task, targetDateISO string, now time.Time) string {
	details := "Status: " + task.Status
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		format := "Jan 2"
		if due.Year() != now.UTC().Year() {
			format = "Jan 2, 2006"
		}
		details += ", Due: " + due.Format(format)
		overdue := utcDateISO(due) < targetDateISO &&
			task.Status != notion.StatusDone && task.Status != notion.StatusCancelled
		if overdue {
			details += " (OVERDUE)"
		}
	} else {
		details += ", Due: N/A"
	}
	if task.Priority != "" {
		details += ", Prio: " + task.Priority
	}
	if task.ListName != "" {
		details += ", List: " + task.ListName
	}
	return details
}

func meetingDetails(meeting matching.CalendarEventSummary) string {
	if meeting.StartTime.IsZero() {
		return "Time: N/A"
	}
	details := "Time: " + meeting.StartTime.UTC().Format("3:04 PM")
	if !meeting.EndTime.IsZero() {
		details += " - " + meeting.EndTime.UTC().Format("3:04 PM")
	}
	return details
}

func emailDetails(email google.GmailMessageSnippet) string {
	from := email.From
	if from == "" {
		from = "N/A"
	}
	details := "From: " + from
	if email.Snippet != "" {
		snippet := email.Snippet
		if len(snippet) > 70 {
			snippet = snippet[:70]
		}
		details += ", Snippet: " + snippet + "..."
	}
	return details
}

func slackMessageTitle(msg slack.MessageSnippet) string {
	title := "Slack message"
	if msg.UserName != "" {
		title += " from " + msg.UserName
	}
	if msg.ChannelName != "" {
		title += " in #" + msg.ChannelName
	} else if msg.UserName != "" {
		title += " (DM)"
	}
	return title
}

func teamsMessageTitle(msg msteams.Message) string {
	title := "Teams message"
	if msg.UserName != "" {
		title += " from " + msg.UserName
	}
	return title
}

// summaryMessage builds the user-facing one-line summary, prefixed with a
// warning when the requested date context could not be parsed.
func (s *Service) summaryMessage(b *Briefing, parsed ParsedDateContext, focus []FocusArea) string {
	counts := map[ItemType]int{}
	overdueTasks := 0
	for _, item := range b.PriorityItems {
		counts[item.Type]++
		if item.Type == ItemTypeTask && item.Task != nil && item.Task.DueDate != nil &&
			utcDateISO(*item.Task.DueDate) < parsed.TargetDateISO &&
			item.Task.Status != notion.StatusDone && item.Task.Status != notion.StatusCancelled {
			overdueTasks++
		}
	}

	var parts []string
	if hasFocus(focus, FocusMeetings) {
		if n := counts[ItemTypeMeeting]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d meeting(s) scheduled.", n))
		} else {
			parts = append(parts, "no meetings scheduled.")
		}
	}
	if hasFocus(focus, FocusTasks) {
		if n := counts[ItemTypeTask]; n > 0 {
			part := fmt.Sprintf("%d task(s) require attention", n)
			if overdueTasks > 0 {
				part += fmt.Sprintf(" (%d overdue)", overdueTasks)
			}
			parts = append(parts, part)
		} else {
			parts = append(parts, "no pressing tasks.")
		}
	}
	if hasFocus(focus, FocusUrgentEmails) {
		if n := counts[ItemTypeEmail]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d recent unread email(s).", n))
		} else {
			parts = append(parts, "no recent unread emails.")
		}
	}
	if hasFocus(focus, FocusUrgentSlack) {
		if n := counts[ItemTypeSlack]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d recent Slack message(s) (DMs/mentions).", n))
		} else {
			parts = append(parts, "no recent Slack DMs or mentions.")
		}
	}
	if hasFocus(focus, FocusUrgentTeams) {
		if n := counts[ItemTypeTeams]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d recent MS Teams message(s) (chats/mentions).", n))
		} else {
			parts = append(parts, "no recent MS Teams chats or mentions.")
		}
	}

	var content string
	switch len(parts) {
	case 0:
		content = "There are no specific items to highlight based on your requested focus areas."
	case 1:
		content = "You have " + parts[0]
	default:
		last := parts[len(parts)-1]
		content = "You have " + strings.Join(parts[:len(parts)-1], ", ") + ", and " + last
	}

	summary := fmt.Sprintf("Here is your briefing for %s: %s",
		FriendlyDateString(parsed.TargetDate, s.now()), content)

	if parsed.Status == DateStatusUnparseable && parsed.WarningMessage != "" {
		summary = parsed.WarningMessage + " " + summary
	}
	return summary
}
