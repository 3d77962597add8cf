package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/session"
	"github.com/existflow/taskboard/internal/store"
)

// startedMsg is sent once the persisted session has been read
type startedMsg struct{ err error }

// resolvedMsg is sent when the guard's profile resolution finishes
type resolvedMsg struct{ err error }

// authMsg is sent when a login or register request finishes
type authMsg struct {
	kind formKind
	user *model.User
	err  error
}

// loadedMsg is sent when a screen's fetches finish
type loadedMsg struct{ err error }

// taskMsg carries a freshly loaded task for the detail screen
type taskMsg struct {
	task *model.Task
	err  error
}

// mutatedMsg is sent when a create, update or delete finishes
type mutatedMsg struct {
	note string
	task *model.Task
	back bool
	err  error
}

func startCmd(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		_, err := a.Start(ctx)
		return startedMsg{err: err}
	}
}

func resolveCmd(ctx context.Context, resolve func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return resolvedMsg{err: resolve(ctx)}
	}
}

func loginCmd(ctx context.Context, a *app.App, email, password string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.Login(ctx, email, password)
		if err != nil {
			return authMsg{kind: formLogin, err: err}
		}
		return authMsg{kind: formLogin, user: res.Profile}
	}
}

func registerCmd(ctx context.Context, a *app.App, f session.RegisterForm) tea.Cmd {
	return func() tea.Msg {
		u, err := a.Session.Register(ctx, f)
		return authMsg{kind: formRegister, user: u, err: err}
	}
}

// loadProjectsCmd fetches projects and every task, for the counts
func loadProjectsCmd(ctx context.Context, a *app.App) tea.Cmd {
	return func() tea.Msg {
		if err := a.Projects.Fetch(ctx, store.ProjectFilter{}); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{err: a.Tasks.Fetch(ctx, store.TaskFilter{})}
	}
}

func loadTasksCmd(ctx context.Context, a *app.App, projectID int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.Projects.Fetch(ctx, store.ProjectFilter{}); err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{err: a.Tasks.Fetch(ctx, store.TaskFilter{ProjectID: projectID})}
	}
}

func loadTaskCmd(ctx context.Context, a *app.App, taskID int64) tea.Cmd {
	return func() tea.Msg {
		t, err := a.Tasks.Get(ctx, taskID)
		if err == nil {
			if perr := a.Projects.Fetch(ctx, store.ProjectFilter{}); perr != nil {
				logger.Warn("Failed to load project names", logger.F("error", perr))
			}
		}
		return taskMsg{task: t, err: err}
	}
}

func createProjectCmd(ctx context.Context, a *app.App, req model.ProjectCreate) tea.Cmd {
	return func() tea.Msg {
		p, err := a.Projects.Create(ctx, req)
		if err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{note: "Created project " + p.Name}
	}
}

func updateProjectCmd(ctx context.Context, a *app.App, id int64, req model.ProjectUpdate) tea.Cmd {
	return func() tea.Msg {
		p, err := a.Projects.Update(ctx, id, req)
		if err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{note: "Updated project " + p.Name}
	}
}

func deleteProjectCmd(ctx context.Context, a *app.App, id int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.Projects.Delete(ctx, id); err != nil {
			return mutatedMsg{err: err}
		}
		a.Tasks.DropProject(id)
		return mutatedMsg{note: "Project deleted"}
	}
}

func createTaskCmd(ctx context.Context, a *app.App, req model.TaskCreate) tea.Cmd {
	return func() tea.Msg {
		t, err := a.Tasks.Create(ctx, req)
		if err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{note: "Added " + t.Title, task: t}
	}
}

func updateTaskCmd(ctx context.Context, a *app.App, id int64, req model.TaskUpdate) tea.Cmd {
	return func() tea.Msg {
		t, err := a.Tasks.Update(ctx, id, req)
		if err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{note: t.Title + ": " + t.Status.Label(), task: t}
	}
}

func deleteTaskCmd(ctx context.Context, a *app.App, id int64, back bool) tea.Cmd {
	return func() tea.Msg {
		if err := a.Tasks.Delete(ctx, id); err != nil {
			return mutatedMsg{err: err}
		}
		return mutatedMsg{note: "Task deleted", back: back}
	}
}
