package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/model"
)

// ProjectFilter narrows a project fetch. Zero value fetches everything.
type ProjectFilter struct {
	Name string
}

func (f ProjectFilter) query() string {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ProjectStore holds the user's projects
type ProjectStore struct {
	r resource[model.Project]
}

// NewProjectStore creates an empty project store
func NewProjectStore(client *api.Client, auth AuthSource) *ProjectStore {
	return &ProjectStore{r: resource[model.Project]{name: "projects", client: client, auth: auth}}
}

// Snapshot returns a copy of the held projects and fetch state
func (s *ProjectStore) Snapshot() Snapshot[model.Project] {
	return s.r.coll.Snapshot()
}

// Find returns the held project with id
func (s *ProjectStore) Find(id int64) (model.Project, bool) {
	return s.r.coll.Find(id)
}

// Fetch replaces the held projects with the server's list
func (s *ProjectStore) Fetch(ctx context.Context, filter ProjectFilter) error {
	if err := s.r.fetch(ctx, "/projects/"+filter.query()); err != nil {
		return fmt.Errorf("failed to fetch projects: %w", err)
	}
	return nil
}

// Create adds a project on the server and appends it
func (s *ProjectStore) Create(ctx context.Context, req model.ProjectCreate) (*model.Project, error) {
	p, err := s.r.create(ctx, "/projects/", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// Update changes a project on the server and replaces the held copy, if any
func (s *ProjectStore) Update(ctx context.Context, id int64, req model.ProjectUpdate) (*model.Project, error) {
	p, err := s.r.update(ctx, fmt.Sprintf("/projects/%d", id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return p, nil
}

// Delete removes a project on the server and locally
func (s *ProjectStore) Delete(ctx context.Context, id int64) error {
	if err := s.r.delete(ctx, fmt.Sprintf("/projects/%d", id), id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// Reset forgets every held project
func (s *ProjectStore) Reset() {
	s.r.coll.reset()
}
