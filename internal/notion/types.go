// Package notion queries and creates tasks in a Notion database.
package notion

import "time"

// Task is a row from the tasks database, flattened from Notion's property
// model into the fields the briefing pipeline needs.
type Task struct {
	ID             string     `json:"id"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority,omitempty"`
	ListName       string     `json:"list_name,omitempty"`
	CreatedDate    time.Time  `json:"created_date"`
	LastEditedTime *time.Time `json:"last_edited_time,omitempty"`
	URL            string     `json:"url"`
	Notes          string     `json:"notes,omitempty"`
}

// TaskStatus values recognized by the tasks database.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
	StatusCancelled  = "Cancelled"
)

// Task priority values recognized by the tasks database.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// TaskQuery filters a tasks-database query. Date filters are calendar days
// in YYYY-MM-DD form; zero-valued fields are omitted from the query.
type TaskQuery struct {
	DueDateBefore   string
	DueDateEquals   string
	StatusNotEquals []string
	Priority        string
	ListName        string
	Limit           int
}
