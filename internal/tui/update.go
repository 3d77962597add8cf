package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/taskboard/internal/api"
	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/guard"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/session"
	"github.com/existflow/taskboard/internal/view"
)

// maxRedirects bounds one routing pass; the guard never chains more than two
const maxRedirects = 4

// Init restores the persisted session and starts the spinner
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, startCmd(m.ctx, m.app))
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startedMsg:
		if msg.err != nil {
			m.message = api.DisplayMessage(msg.err)
		}
		return m.syncRoute()

	case resolvedMsg:
		if msg.err != nil {
			logger.Debug("Profile resolution ended", logger.F("error", msg.err))
		}
		return m.syncRoute()

	case authMsg:
		return m.handleAuthResult(msg)

	case loadedMsg:
		m.loading = false
		m.listErr = ""
		if msg.err != nil {
			m.listErr = api.DisplayMessage(msg.err)
		}
		m.clampCursors()
		return m.syncRoute()

	case taskMsg:
		m.loading = false
		m.listErr = ""
		if msg.err != nil {
			m.listErr = api.DisplayMessage(msg.err)
		} else {
			m.detail = msg.task
		}
		return m.syncRoute()

	case mutatedMsg:
		return m.handleMutation(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.mode {
		case ModeForm:
			return m.updateModal(msg)
		case ModeFilter:
			return m.updateSearch(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// syncRoute asks the guard about the navigator's path and switches screens
// accordingly. It runs after every async result, so a redirect issued by the
// 401 policy is picked up on the next message.
func (m Model) syncRoute() (Model, tea.Cmd) {
	for i := 0; i < maxRedirects; i++ {
		path := m.app.Nav.Path()
		d := m.app.Guard.Evaluate(path)

		switch d.Kind {
		case guard.Redirect:
			m.app.Nav.Redirect(d.Target)
			continue
		case guard.Loading:
			m.loading = true
			if d.Resolve != nil {
				return m, resolveCmd(m.ctx, d.Resolve)
			}
			return m, nil
		}

		route := app.ParsePath(path)
		if route.Screen == app.ScreenUnknown {
			if uid := m.app.UserID(); uid != 0 {
				m.app.Nav.Redirect(app.ProjectsPath(uid))
				continue
			}
			m.app.Nav.Redirect(app.LoginPath)
			continue
		}
		if path == m.path {
			return m, nil
		}
		return m.enter(path, route)
	}
	logger.Warn("Too many redirects", logger.F("path", m.app.Nav.Path()))
	return m, nil
}

// enter switches to a newly routed screen and starts its fetch
func (m Model) enter(path string, route app.Route) (Model, tea.Cmd) {
	logger.Debug("Entering screen", logger.F("path", path), logger.F("screen", route.Screen.String()))

	m.path = path
	m.route = route
	m.loading = false
	m.mode = ModeNormal
	m.modal = form{}
	m.confirm = confirmation{}
	m.listErr = ""
	m.filterText = ""
	m.search.SetValue("")

	switch route.Screen {
	case app.ScreenLogin:
		m.auth = loginForm(m.lastEmail)
		return m, nil
	case app.ScreenRegister:
		m.auth = registerForm()
		return m, nil
	case app.ScreenProjects:
		m.loading = true
		return m, loadProjectsCmd(m.ctx, m.app)
	case app.ScreenTasks:
		m.taskCursor = 0
		m.statusFilter = view.StatusAll
		m.loading = true
		return m, loadTasksCmd(m.ctx, m.app, route.ProjectID)
	case app.ScreenTask:
		m.detail = nil
		m.loading = true
		return m, loadTaskCmd(m.ctx, m.app, route.TaskID)
	}
	return m, nil
}

func (m Model) navigate(path string) (Model, tea.Cmd) {
	m.app.Nav.Navigate(path)
	return m.syncRoute()
}

// back pops the history, falling back to the screen's parent
func (m Model) back() (Model, tea.Cmd) {
	if !m.app.Nav.Back() {
		switch m.route.Screen {
		case app.ScreenTask:
			m.app.Nav.Redirect(app.TasksPath(m.route.UserID, m.route.ProjectID))
		case app.ScreenTasks:
			m.app.Nav.Redirect(app.ProjectsPath(m.route.UserID))
		case app.ScreenRegister:
			m.app.Nav.Redirect(app.LoginPath)
		}
	}
	return m.syncRoute()
}

func loginForm(email string) form {
	f := newForm(formLogin, "Sign in",
		field{label: "Email", value: email},
		field{label: "Password", secret: true},
	)
	if email != "" {
		f.setFocus(1)
	}
	return f
}

func registerForm() form {
	return newForm(formRegister, "Create account",
		field{label: "Name"},
		field{label: "Email"},
		field{label: "Password", secret: true},
		field{label: "Confirm password", secret: true},
	)
}

func (m Model) handleAuthResult(msg authMsg) (tea.Model, tea.Cmd) {
	m.auth.busy = false
	if msg.err != nil {
		m.auth.err = api.DisplayMessage(msg.err)
		return m.syncRoute()
	}

	switch msg.kind {
	case formLogin:
		m.message = "Welcome, " + msg.user.Name
		m.lastEmail = msg.user.Email
	case formRegister:
		m.message = "Account created, please sign in"
		m.lastEmail = msg.user.Email
		m.app.Nav.Redirect(app.LoginPath)
	}
	return m.syncRoute()
}

func (m Model) handleMutation(msg mutatedMsg) (tea.Model, tea.Cmd) {
	m.modal.busy = false
	if msg.err != nil {
		if m.mode == ModeForm {
			m.modal.err = api.DisplayMessage(msg.err)
		} else {
			m.message = api.DisplayMessage(msg.err)
		}
		return m.syncRoute()
	}

	m.mode = ModeNormal
	m.modal = form{}
	m.message = msg.note
	if msg.task != nil && m.route.Screen == app.ScreenTask && msg.task.ID == m.route.TaskID {
		m.detail = msg.task
	}
	m.clampCursors()
	if msg.back {
		return m.back()
	}
	return m.syncRoute()
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.route.Screen {
	case app.ScreenLogin, app.ScreenRegister:
		return m.updateAuth(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
		return m, nil
	case key.Matches(msg, keys.Logout):
		if m.loading && m.route.Screen == app.ScreenUnknown {
			return m, nil
		}
		m.app.Logout()
		m.message = "Logged out"
		return m.syncRoute()
	}

	switch m.route.Screen {
	case app.ScreenProjects:
		return m.updateProjects(msg)
	case app.ScreenTasks:
		return m.updateTasks(msg)
	case app.ScreenTask:
		return m.updateDetail(msg)
	}
	return m, nil
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.auth.busy {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Register) && m.route.Screen == app.ScreenLogin:
		return m.navigate(app.RegisterPath)
	case key.Matches(msg, keys.Escape):
		if m.route.Screen == app.ScreenRegister {
			return m.back()
		}
		return m, nil
	}

	submitted, cmd := m.auth.handleKey(msg)
	if !submitted {
		return m, cmd
	}

	m.auth.err = ""
	switch m.auth.kind {
	case formLogin:
		email := strings.TrimSpace(m.auth.value(0))
		m.lastEmail = email
		m.auth.busy = true
		return m, loginCmd(m.ctx, m.app, email, m.auth.value(1))
	case formRegister:
		rf := session.RegisterForm{
			Name:            m.auth.value(0),
			Email:           m.auth.value(1),
			Password:        m.auth.value(2),
			ConfirmPassword: m.auth.value(3),
		}
		if err := rf.Validate(); err != nil {
			m.auth.err = err.Error()
			return m, nil
		}
		m.auth.busy = true
		return m, registerCmd(m.ctx, m.app, rf)
	}
	return m, nil
}

func (m Model) updateProjects(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.projCursor > 0 {
			m.projCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.projCursor < len(m.visibleProjects())-1 {
			m.projCursor++
		}
	case key.Matches(msg, keys.Open):
		if p := m.currentProject(); p != nil {
			return m.navigate(app.TasksPath(m.route.UserID, p.ID))
		}
	case key.Matches(msg, keys.Add):
		m.modal = newForm(formNewProject, "New project",
			field{label: "Name"},
			field{label: "Description"},
		)
		m.mode = ModeForm
	case key.Matches(msg, keys.Edit):
		if p := m.currentProject(); p != nil {
			m.modal = newForm(formEditProject, "Edit project",
				field{label: "Name", value: p.Name},
				field{label: "Description", value: p.Description},
			)
			m.modal.targetID = p.ID
			m.mode = ModeForm
		}
	case key.Matches(msg, keys.Delete):
		if p := m.currentProject(); p != nil {
			m.confirm = confirmation{label: p.Name, project: true, id: p.ID}
			m.mode = ModeConfirm
		}
	case key.Matches(msg, keys.Search):
		return m.startSearch()
	case key.Matches(msg, keys.Escape):
		m.clearSearch()
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, loadProjectsCmd(m.ctx, m.app)
	}
	return m, nil
}

func (m Model) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.taskCursor > 0 {
			m.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.taskCursor < len(m.visibleTasks())-1 {
			m.taskCursor++
		}
	case key.Matches(msg, keys.Open):
		if t := m.currentTask(); t != nil {
			return m.navigate(app.TaskPath(m.route.UserID, m.route.ProjectID, t.ID))
		}
	case key.Matches(msg, keys.Add):
		m.modal = newForm(formNewTask, "New task in "+m.projectName(m.route.ProjectID),
			field{label: "Title"},
			field{label: "Description"},
		)
		m.modal.targetID = m.route.ProjectID
		m.mode = ModeForm
	case key.Matches(msg, keys.Edit):
		if t := m.currentTask(); t != nil {
			m.startEditTask(*t)
		}
	case key.Matches(msg, keys.Status):
		if t := m.currentTask(); t != nil {
			return m, m.cycleStatus(*t)
		}
	case key.Matches(msg, keys.Filter):
		m.statusFilter = view.NextStatusFilter(m.statusFilter)
		m.taskCursor = 0
		m.message = "Showing " + view.StatusFilterLabel(m.statusFilter)
	case key.Matches(msg, keys.Delete):
		if t := m.currentTask(); t != nil {
			m.confirm = confirmation{label: t.Title, id: t.ID}
			m.mode = ModeConfirm
		}
	case key.Matches(msg, keys.Search):
		return m.startSearch()
	case key.Matches(msg, keys.Escape):
		if m.filterText != "" {
			m.clearSearch()
			return m, nil
		}
		return m.back()
	case key.Matches(msg, keys.Back):
		return m.back()
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, loadTasksCmd(m.ctx, m.app, m.route.ProjectID)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Escape):
		return m.back()
	case m.detail == nil:
		return m, nil
	case key.Matches(msg, keys.Status):
		return m, m.cycleStatus(*m.detail)
	case key.Matches(msg, keys.Edit):
		m.startEditTask(*m.detail)
	case key.Matches(msg, keys.Delete):
		m.confirm = confirmation{label: m.detail.Title, id: m.detail.ID}
		m.mode = ModeConfirm
	case key.Matches(msg, keys.Refresh):
		m.loading = true
		return m, loadTaskCmd(m.ctx, m.app, m.route.TaskID)
	}
	return m, nil
}

func (m *Model) startEditTask(t model.Task) {
	m.modal = newForm(formEditTask, "Edit task",
		field{label: "Title", value: t.Title},
		field{label: "Description", value: t.Description},
	)
	m.modal.targetID = t.ID
	m.mode = ModeForm
}

func (m Model) cycleStatus(t model.Task) tea.Cmd {
	next := t.Status.Next()
	return updateTaskCmd(m.ctx, m.app, t.ID, model.TaskUpdate{Status: &next})
}

func (m Model) startSearch() (tea.Model, tea.Cmd) {
	m.mode = ModeFilter
	m.search.SetValue(m.filterText)
	m.search.CursorEnd()
	return m, m.search.Focus()
}

func (m *Model) clearSearch() {
	if m.filterText == "" {
		return
	}
	m.filterText = ""
	m.search.SetValue("")
	m.message = "Filter cleared"
	m.clampCursors()
}

// updateSearch filters the current list live as the user types
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = ModeNormal
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.search.Blur()
		m.clearSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.filterText = m.search.Value()
	m.projCursor = 0
	m.taskCursor = 0
	return m, cmd
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal.busy {
		return m, nil
	}
	if key.Matches(msg, keys.Escape) {
		m.mode = ModeNormal
		m.modal = form{}
		return m, nil
	}

	submitted, cmd := m.modal.handleKey(msg)
	if !submitted {
		return m, cmd
	}

	name := strings.TrimSpace(m.modal.value(0))
	desc := strings.TrimSpace(m.modal.value(1))
	if name == "" {
		m.modal.err = m.modal.labels[0] + " is required"
		return m, nil
	}
	m.modal.err = ""
	m.modal.busy = true

	switch m.modal.kind {
	case formNewProject:
		return m, createProjectCmd(m.ctx, m.app, model.ProjectCreate{Name: name, Description: desc})
	case formEditProject:
		return m, updateProjectCmd(m.ctx, m.app, m.modal.targetID, model.ProjectUpdate{Name: &name, Description: &desc})
	case formNewTask:
		return m, createTaskCmd(m.ctx, m.app, model.TaskCreate{
			Title:       name,
			Description: desc,
			Status:      model.StatusPending,
			ProjectID:   m.modal.targetID,
		})
	case formEditTask:
		return m, updateTaskCmd(m.ctx, m.app, m.modal.targetID, model.TaskUpdate{Title: &name, Description: &desc})
	}
	m.modal.busy = false
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	m.confirm = confirmation{}
	m.mode = ModeNormal

	switch msg.String() {
	case "y", "Y":
		if c.project {
			return m, deleteProjectCmd(m.ctx, m.app, c.id)
		}
		return m, deleteTaskCmd(m.ctx, m.app, c.id, m.route.Screen == app.ScreenTask)
	}
	m.message = "Cancelled"
	return m, nil
}
