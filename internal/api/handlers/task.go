package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"assistant-agent/internal/api"
	"assistant-agent/internal/notion"
)

// taskCreator inserts a task into the tasks database.
type taskCreator interface {
	CreateTask(ctx context.Context, userID string, params notion.CreateTaskParams) (*notion.Task, error)
}

// TaskHandler handles the create-task skill endpoint.
type TaskHandler struct {
	tasks taskCreator
}

func NewTaskHandler(tasks taskCreator) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTaskRequest is the request body for the create-task skill.
type CreateTaskRequest struct {
	UserID      string     `json:"user_id" binding:"required"`
	Description string     `json:"description" binding:"required,max=500"`
	DueDate     *time.Time `json:"due_date"`
	Status      string     `json:"status" binding:"omitempty,oneof='To Do' 'In Progress' Done Cancelled"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=High Medium Low"`
	ListName    string     `json:"list_name"`
	Notes       string     `json:"notes"`
}

// CreateTask creates a new task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.SendError(c, http.StatusBadRequest, api.ErrCodeValidation, "Invalid request body", err.Error())
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), req.UserID, notion.CreateTaskParams{
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Priority:    req.Priority,
		ListName:    req.ListName,
		Notes:       req.Notes,
	})
	if err != nil {
		api.SendError(c, http.StatusInternalServerError, api.ErrCodeInternal, "Failed to create task", err.Error())
		return
	}

	api.SendSuccess(c, http.StatusCreated, task)
}
