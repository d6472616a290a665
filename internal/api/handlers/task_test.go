package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistant-agent/internal/notion"
)

type fakeTaskCreator struct {
	task   *notion.Task
	err    error
	userID string
	params notion.CreateTaskParams
}

func (f *fakeTaskCreator) CreateTask(_ context.Context, userID string, params notion.CreateTaskParams) (*notion.Task, error) {
	f.userID = userID
	f.params = params
	return f.task, f.err
}

func taskRouter(creator taskCreator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/skills/create-task", NewTaskHandler(creator).CreateTask)
	return router
}

func TestCreateTaskSkill(t *testing.T) {
	creator := &fakeTaskCreator{task: &notion.Task{
		ID:          "t-new",
		Description: "Book flights",
		Status:      notion.StatusToDo,
	}}
	router := taskRouter(creator)

	w := performRequest(t, router, http.MethodPost, "/skills/create-task",
		`{"user_id":"user-1","description":"Book flights","due_date":"2025-06-12T00:00:00Z","priority":"Medium","list_name":"Personal"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "t-new", data["id"])

	assert.Equal(t, "user-1", creator.userID)
	assert.Equal(t, "Book flights", creator.params.Description)
	assert.Equal(t, "Medium", creator.params.Priority)
	assert.Equal(t, "Personal", creator.params.ListName)
	require.NotNil(t, creator.params.DueDate)
	assert.Equal(t, time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC), creator.params.DueDate.UTC())
}

func TestCreateTaskSkillMissingDescription(t *testing.T) {
	router := taskRouter(&fakeTaskCreator{})

	w := performRequest(t, router, http.MethodPost, "/skills/create-task", `{"user_id":"user-1"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestCreateTaskSkillCreatorError(t *testing.T) {
	router := taskRouter(&fakeTaskCreator{err: errors.New("notion unavailable")})

	w := performRequest(t, router, http.MethodPost, "/skills/create-task",
		`{"user_id":"user-1","description":"Book flights"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
