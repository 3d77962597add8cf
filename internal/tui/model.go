// Package tui is the interactive terminal front end. Which screen is shown is
// decided by the route guard for the navigator's current path; all network
// calls run as tea.Cmds.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/view"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeForm
	ModeFilter
	ModeConfirm
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	app *app.App
	ctx context.Context

	// UI state
	width   int
	height  int
	path    string
	route   app.Route
	loading bool
	spinner spinner.Model
	mode    Mode

	// Login and register screens
	auth      form
	lastEmail string

	// Create and edit modal
	modal form

	// Lists
	projCursor   int
	taskCursor   int
	search       textinput.Model
	filterText   string
	statusFilter model.TaskStatus
	detail       *model.Task

	// Pending delete
	confirm confirmation

	message string
	listErr string
}

type confirmation struct {
	label   string
	project bool
	id      int64
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, a *app.App) Model {
	logger.Info("Initializing TUI model")

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = HeaderStyle

	si := textinput.New()
	si.Placeholder = "Search..."
	si.CharLimit = 128
	si.Width = 40

	return Model{
		app:          a,
		ctx:          ctx,
		spinner:      sp,
		search:       si,
		statusFilter: view.StatusAll,
		loading:      true,
	}
}

func (m Model) visibleProjects() []model.Project {
	return view.FilterProjects(m.app.Projects.Snapshot().Items, m.filterText)
}

func (m Model) visibleTasks() []model.Task {
	items := view.GroupTasksByProject(m.app.Tasks.Snapshot().Items)[m.route.ProjectID]
	return view.FilterTasks(items, m.filterText, m.statusFilter)
}

func (m Model) currentProject() *model.Project {
	projects := m.visibleProjects()
	if m.projCursor < len(projects) {
		return &projects[m.projCursor]
	}
	return nil
}

func (m Model) currentTask() *model.Task {
	tasks := m.visibleTasks()
	if m.taskCursor < len(tasks) {
		return &tasks[m.taskCursor]
	}
	return nil
}

func (m Model) projectName(id int64) string {
	if p, ok := m.app.Projects.Find(id); ok {
		return p.Name
	}
	return "Project"
}

func (m *Model) clampCursors() {
	if n := len(m.visibleProjects()); m.projCursor >= n {
		m.projCursor = max(n-1, 0)
	}
	if n := len(m.visibleTasks()); m.taskCursor >= n {
		m.taskCursor = max(n-1, 0)
	}
}
