package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/todoflow-ai/todoflow/internal/domain"
)

// TaskCreate is the request body for creating a task.
type TaskCreate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// TaskUpdate is the request body for updating a task. Nil fields are
// left unchanged by the backend.
type TaskUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ListTasksOptions narrow the task listing.
type ListTasksOptions struct {
	Filter string // "all", "completed", "pending"
	SortBy string // "created_at", "title", "updated_at"
	Search string // substring match on title and description
}

// ListTasks fetches the authoritative task list.
func (c *Client) ListTasks(ctx context.Context, opts ListTasksOptions) ([]domain.Task, error) {
	q := url.Values{}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	if opts.SortBy != "" {
		q.Set("sort_by", opts.SortBy)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}

	path := "/api/tasks"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var tasks []domain.Task
	if err := c.getJSON(ctx, path, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task and returns the stored record.
func (c *Client) CreateTask(ctx context.Context, in TaskCreate) (*domain.Task, error) {
	var task domain.Task
	if err := c.postJSON(ctx, "/api/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to a task.
func (c *Client) UpdateTask(ctx context.Context, id string, in TaskUpdate) (*domain.Task, error) {
	var task domain.Task
	if err := c.sendJSON(ctx, http.MethodPut, "/api/tasks/"+id, in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ToggleTask flips a task's completion status.
func (c *Client) ToggleTask(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	if err := c.sendJSON(ctx, http.MethodPatch, "/api/tasks/"+id+"/complete", nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/api/tasks/"+id, nil, nil)
}
