package testserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/existflow/taskboard/internal/model"
	"github.com/labstack/echo/v4"
)

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil
}

func (b *Backend) handleListProjects(c echo.Context) error {
	uid := currentUser(c)
	name := strings.ToLower(c.QueryParam("name"))

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Project{}
	for _, p := range b.projects {
		if p.UserID != uid {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			continue
		}
		out = append(out, p)
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) handleCreateProject(c echo.Context) error {
	var req model.ProjectCreate
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return detail(c, http.StatusUnprocessableEntity, "name is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p := model.Project{
		ID:          b.allocID(),
		Name:        req.Name,
		Description: req.Description,
		UserID:      currentUser(c),
		CreatedAt:   now(),
	}
	b.projects = append(b.projects, p)
	return c.JSON(http.StatusCreated, p)
}

// findProject returns the index of the caller's project, or -1
func (b *Backend) findProject(c echo.Context) int {
	id, ok := pathID(c)
	if !ok {
		return -1
	}
	uid := currentUser(c)
	for i, p := range b.projects {
		if p.ID == id && p.UserID == uid {
			return i
		}
	}
	return -1
}

func (b *Backend) handleGetProject(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findProject(c)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Project not found")
	}
	return c.JSON(http.StatusOK, b.projects[i])
}

func (b *Backend) handleUpdateProject(c echo.Context) error {
	var req model.ProjectUpdate
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid request body")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findProject(c)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Project not found")
	}
	if req.Name != nil {
		b.projects[i].Name = *req.Name
	}
	if req.Description != nil {
		b.projects[i].Description = *req.Description
	}
	return c.JSON(http.StatusOK, b.projects[i])
}

func (b *Backend) handleDeleteProject(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findProject(c)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Project not found")
	}
	id := b.projects[i].ID
	b.projects = append(b.projects[:i], b.projects[i+1:]...)

	kept := b.tasks[:0]
	for _, t := range b.tasks {
		if t.ProjectID != id {
			kept = append(kept, t)
		}
	}
	b.tasks = kept
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) handleListTasks(c echo.Context) error {
	uid := currentUser(c)
	status := model.TaskStatus(c.QueryParam("status"))
	var projectID int64
	if raw := c.QueryParam("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return detail(c, http.StatusUnprocessableEntity, "project_id must be an integer")
		}
		projectID = id
	}
	if status != "" && !status.Valid() {
		return detail(c, http.StatusUnprocessableEntity, "invalid status")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	out := []model.Task{}
	for _, t := range b.tasks {
		if t.UserID != uid {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if projectID != 0 && t.ProjectID != projectID {
			continue
		}
		out = append(out, t)
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) handleCreateTask(c echo.Context) error {
	var req model.TaskCreate
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		return detail(c, http.StatusUnprocessableEntity, "title is required")
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}
	if !req.Status.Valid() {
		return detail(c, http.StatusUnprocessableEntity, "invalid status")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	uid := currentUser(c)
	owned := false
	for _, p := range b.projects {
		if p.ID == req.ProjectID && p.UserID == uid {
			owned = true
			break
		}
	}
	if !owned {
		return detail(c, http.StatusNotFound, "Project not found")
	}

	t := model.Task{
		ID:          b.allocID(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ProjectID:   req.ProjectID,
		UserID:      uid,
		CreatedAt:   now(),
	}
	b.tasks = append(b.tasks, t)
	return c.JSON(http.StatusCreated, t)
}

func (b *Backend) findTask(c echo.Context) int {
	id, ok := pathID(c)
	if !ok {
		return -1
	}
	uid := currentUser(c)
	for i, t := range b.tasks {
		if t.ID == id && t.UserID == uid {
			return i
		}
	}
	return -1
}

func (b *Backend) handleGetTask(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findTask(c)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	return c.JSON(http.StatusOK, b.tasks[i])
}

func (b *Backend) handleUpdateTask(c echo.Context) error {
	var req model.TaskUpdate
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid request body")
	}
	if req.Status != nil && !req.Status.Valid() {
		return detail(c, http.StatusUnprocessableEntity, "invalid status")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findTask(c)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	if req.Title != nil {
		b.tasks[i].Title = *req.Title
	}
	if req.Description != nil {
		b.tasks[i].Description = *req.Description
	}
	if req.Status != nil {
		b.tasks[i].Status = *req.Status
	}
	return c.JSON(http.StatusOK, b.tasks[i])
}

func (b *Backend) handleDeleteTask(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.findTask(c)
	if i < 0 {
		return detail(c, http.StatusNotFound, "Task not found")
	}
	b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	return c.NoContent(http.StatusNoContent)
}
