package notion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"assistant-agent/internal/config"
	"assistant-agent/internal/logger"
)

// Property names in the tasks database schema.
const (
	propDescription = "Task Description"
	propDueDate     = "Due Date"
	propStatus      = "Status"
	propPriority    = "Priority"
	propListName    = "List Name"
	propNotes       = "Notes"
)

// databaseAPI and pageAPI are the notionapi services the client uses.
type databaseAPI interface {
	Query(ctx context.Context, id notionapi.DatabaseID, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
}

type pageAPI interface {
	Create(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
}

// Client queries and creates rows in the tasks database. The integration
// token is workspace-scoped, so the assistant user ID only features in
// logs.
type Client struct {
	databases  databaseAPI
	pages      pageAPI
	databaseID notionapi.DatabaseID
}

// NewClient creates a Notion client from configuration.
func NewClient(cfg config.NotionConfig) *Client {
	api := notionapi.NewClient(notionapi.Token(cfg.APIKey))
	return &Client{
		databases:  api.Database,
		pages:      api.Page,
		databaseID: notionapi.DatabaseID(cfg.TasksDatabaseID),
	}
}

// QueryTasks returns tasks matching the query, sorted by ascending due
// date.
func (c *Client) QueryTasks(ctx context.Context, userID string, q TaskQuery) ([]Task, error) {
	req := &notionapi.DatabaseQueryRequest{
		Sorts: []notionapi.SortObject{{Property: propDueDate, Direction: notionapi.SortOrderASC}},
	}
	if q.Limit > 0 {
		req.PageSize = q.Limit
	}

	filter, err := buildTaskFilter(q)
	if err != nil {
		return nil, err
	}
	if len(filter) > 0 {
		req.Filter = filter
	}

	resp, err := c.databases.Query(ctx, c.databaseID, req)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	tasks := make([]Task, 0, len(resp.Results))
	for i := range resp.Results {
		tasks = append(tasks, taskFromPage(&resp.Results[i]))
	}

	logger.Debug().
		Str("user_id", userID).
		Int("tasks", len(tasks)).
		Msg("queried Notion tasks")
	return tasks, nil
}

func buildTaskFilter(q TaskQuery) (notionapi.AndCompoundFilter, error) {
	var filter notionapi.AndCompoundFilter

	if q.DueDateBefore != "" {
		d, err := parseDay(q.DueDateBefore)
		if err != nil {
			return nil, fmt.Errorf("invalid due-before date: %w", err)
		}
		filter = append(filter, notionapi.PropertyFilter{
			Property: propDueDate,
			Date:     &notionapi.DateFilterCondition{Before: d},
		})
	}
	if q.DueDateEquals != "" {
		d, err := parseDay(q.DueDateEquals)
		if err != nil {
			return nil, fmt.Errorf("invalid due-on date: %w", err)
		}
		filter = append(filter, notionapi.PropertyFilter{
			Property: propDueDate,
			Date:     &notionapi.DateFilterCondition{Equals: d},
		})
	}
	for _, status := range q.StatusNotEquals {
		filter = append(filter, notionapi.PropertyFilter{
			Property: propStatus,
			Status:   &notionapi.StatusFilterCondition{DoesNotEqual: status},
		})
	}
	if q.Priority != "" {
		filter = append(filter, notionapi.PropertyFilter{
			Property: propPriority,
			Select:   &notionapi.SelectFilterCondition{Equals: q.Priority},
		})
	}
	if q.ListName != "" {
		filter = append(filter, notionapi.PropertyFilter{
			Property: propListName,
			Select:   &notionapi.SelectFilterCondition{Equals: q.ListName},
		})
	}
	return filter, nil
}

func parseDay(s string) (*notionapi.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	d := notionapi.Date(t)
	return &d, nil
}

// CreateTaskParams are the writable fields of a new task.
type CreateTaskParams struct {
	Description string
	DueDate     *time.Time
	Status      string
	Priority    string
	ListName    string
	Notes       string
}

// CreateTask inserts a new row into the tasks database.
func (c *Client) CreateTask(ctx context.Context, userID string, params CreateTaskParams) (*Task, error) {
	if params.Description == "" {
		return nil, fmt.Errorf("task description is required")
	}
	status := params.Status
	if status == "" {
		status = StatusToDo
	}

	properties := notionapi.Properties{
		propDescription: notionapi.TitleProperty{
			Title: []notionapi.RichText{{Text: &notionapi.Text{Content: params.Description}}},
		},
		propStatus: notionapi.StatusProperty{
			Status: notionapi.Option{Name: status},
		},
	}
	if params.DueDate != nil {
		d := notionapi.Date(*params.DueDate)
		properties[propDueDate] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &d},
		}
	}
	if params.Priority != "" {
		properties[propPriority] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: params.Priority},
		}
	}
	if params.ListName != "" {
		properties[propListName] = notionapi.SelectProperty{
			Select: notionapi.Option{Name: params.ListName},
		}
	}
	if params.Notes != "" {
		properties[propNotes] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: params.Notes}}},
		}
	}

	page, err := c.pages.Create(ctx, &notionapi.PageCreateRequest{
		Parent:     notionapi.Parent{Type: notionapi.ParentTypeDatabaseID, DatabaseID: c.databaseID},
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	task := taskFromPage(page)
	logger.Info().
		Str("user_id", userID).
		Str("task_id", task.ID).
		Msg("created Notion task")
	return &task, nil
}

// taskFromPage flattens a Notion page into a Task.
func taskFromPage(page *notionapi.Page) Task {
	task := Task{
		ID:          string(page.ID),
		URL:         page.URL,
		CreatedDate: page.CreatedTime,
	}
	if !page.LastEditedTime.IsZero() {
		edited := page.LastEditedTime
		task.LastEditedTime = &edited
	}

	for name, prop := range page.Properties {
		switch name {
		case propDescription:
			if p, ok := prop.(*notionapi.TitleProperty); ok {
				task.Description = richTextPlain(p.Title)
			}
		case propDueDate:
			if p, ok := prop.(*notionapi.DateProperty); ok && p.Date != nil && p.Date.Start != nil {
				due := time.Time(*p.Date.Start)
				task.DueDate = &due
			}
		case propStatus:
			if p, ok := prop.(*notionapi.StatusProperty); ok {
				task.Status = p.Status.Name
			}
		case propPriority:
			if p, ok := prop.(*notionapi.SelectProperty); ok {
				task.Priority = p.Select.Name
			}
		case propListName:
			if p, ok := prop.(*notionapi.SelectProperty); ok {
				task.ListName = p.Select.Name
			}
		case propNotes:
			if p, ok := prop.(*notionapi.RichTextProperty); ok {
				task.Notes = richTextPlain(p.RichText)
			}
		}
	}
	return task
}

func richTextPlain(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return b.String()
}
