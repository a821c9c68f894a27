package api

import (
	"context"
	"fmt"

	"github.com/taskboard/client/internal/model"
)

// TaskDraft is the writable portion of a task, sent on create and update.
type TaskDraft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Deadline    *string `json:"deadline"`
}

// ListTasks fetches every task in a project. Results decode through the
// canonical task shape regardless of which form the backend sends.
func (c *Client) ListTasks(ctx context.Context, projectID int) ([]model.Task, error) {
	var tasks []model.Task
	path := fmt.Sprintf("/projects/%d/tasks", projectID)
	if err := c.get(ctx, path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches a single task by id.
func (c *Client) GetTask(ctx context.Context, taskID int) (*model.Task, error) {
	var task model.Task
	path := fmt.Sprintf("/tasks/%d", taskID)
	if err := c.get(ctx, path, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask submits a new task to a project and returns the server's
// confirmed record.
func (c *Client) CreateTask(ctx context.Context, projectID int, draft TaskDraft) (*model.Task, error) {
	var task model.Task
	path := fmt.Sprintf("/projects/%d/tasks", projectID)
	if err := c.post(ctx, path, draft, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask replaces a task's writable fields and returns the saved record.
func (c *Client) UpdateTask(ctx context.Context, taskID int, draft TaskDraft) (*model.Task, error) {
	var task model.Task
	path := fmt.Sprintf("/tasks/%d", taskID)
	if err := c.put(ctx, path, draft, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task. The backend answers 204 on success.
func (c *Client) DeleteTask(ctx context.Context, taskID int) error {
	return c.delete(ctx, fmt.Sprintf("/tasks/%d", taskID))
}
