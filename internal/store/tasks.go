package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/model"
)

// TaskFilter narrows a task fetch. Zero values mean "any".
type TaskFilter struct {
	Status    model.TaskStatus
	ProjectID int64
}

func (f TaskFilter) query() string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.ProjectID != 0 {
		q.Set("project_id", strconv.FormatInt(f.ProjectID, 10))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// TaskStore holds the user's tasks
type TaskStore struct {
	r resource[model.Task]
}

// NewTaskStore creates an empty task store
func NewTaskStore(client *api.Client, auth AuthSource) *TaskStore {
	return &TaskStore{r: resource[model.Task]{name: "tasks", client: client, auth: auth}}
}

// Snapshot returns a copy of the held tasks and fetch state
func (s *TaskStore) Snapshot() Snapshot[model.Task] {
	return s.r.coll.Snapshot()
}

// Find returns the held task with id
func (s *TaskStore) Find(id int64) (model.Task, bool) {
	return s.r.coll.Find(id)
}

// Fetch replaces the held tasks with the server's list
func (s *TaskStore) Fetch(ctx context.Context, filter TaskFilter) error {
	if err := s.r.fetch(ctx, "/tasks/"+filter.query()); err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return nil
}

// Get loads a single task without touching the held collection
func (s *TaskStore) Get(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task
	if err := s.r.client.Get(ctx, fmt.Sprintf("/tasks/%d", id), &t, s.r.headers()); err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// Create adds a task on the server and appends it
func (s *TaskStore) Create(ctx context.Context, req model.TaskCreate) (*model.Task, error) {
	t, err := s.r.create(ctx, "/tasks/", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return t, nil
}

// Update changes a task on the server and replaces the held copy, if any
func (s *TaskStore) Update(ctx context.Context, id int64, req model.TaskUpdate) (*model.Task, error) {
	t, err := s.r.update(ctx, fmt.Sprintf("/tasks/%d", id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return t, nil
}

// Delete removes a task on the server and locally
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	if err := s.r.delete(ctx, fmt.Sprintf("/tasks/%d", id), id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// DropProject forgets held tasks of a project, used after the project is
// deleted since the server removes its tasks too.
func (s *TaskStore) DropProject(projectID int64) {
	s.r.coll.removeWhere(func(t model.Task) bool { return t.ProjectID == projectID })
}

// Reset forgets every held task
func (s *TaskStore) Reset() {
	s.r.coll.reset()
}
