package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/taskboard/internal/app"
	"github.com/existflow/taskboard/internal/model"
	"github.com/existflow/taskboard/internal/view"
)

// View renders the UI
func (m Model) View() string {
	width, height := m.size()

	var main string
	switch {
	case m.mode == ModeHelp:
		main = m.renderHelp()
	case m.route.Screen == app.ScreenLogin, m.route.Screen == app.ScreenRegister:
		main = m.renderAuth()
	case m.route.Screen == app.ScreenUnknown, m.path != m.app.Nav.Path() && m.loading:
		main = lipgloss.Place(width, height-2, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Checking session...")
	case m.route.Screen == app.ScreenProjects:
		main = m.renderProjects()
	case m.route.Screen == app.ScreenTasks:
		main = m.renderTasks()
	case m.route.Screen == app.ScreenTask:
		main = m.renderDetail()
	}

	if m.mode == ModeForm || m.mode == ModeConfirm {
		main = lipgloss.Place(
			width, height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderModal(),
			lipgloss.WithWhitespaceChars(" "),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

// size falls back to a classic terminal before the first WindowSizeMsg
func (m Model) size() (int, int) {
	if m.width == 0 || m.height == 0 {
		return 80, 24
	}
	return m.width, m.height
}

func (m Model) header(title string) string {
	width, _ := m.size()
	s := HeaderStyle.Render(title)
	if m.loading {
		s += " " + m.spinner.View()
	}
	s += "\n" + lipgloss.NewStyle().Foreground(Border).Render(repeat("─", width-4)) + "\n"
	if m.listErr != "" {
		s += ErrorStyle.Render(m.listErr) + "\n"
	}
	return s + "\n"
}

func (m Model) renderAuth() string {
	width, height := m.size()

	content := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("Taskboard") + "  "
	content += HelpStyle.Render(m.auth.title) + "\n\n"
	content += m.auth.view()
	switch {
	case m.auth.busy:
		content += m.spinner.View() + " Please wait..."
	case m.route.Screen == app.ScreenLogin:
		content += HelpStyle.Render("Enter:sign in  Tab:next field  Ctrl+R:create account")
	default:
		content += HelpStyle.Render("Enter:register  Tab:next field  Esc:back to sign in")
	}

	return lipgloss.Place(width, height-2, lipgloss.Center, lipgloss.Center, ModalStyle.Width(56).Render(content))
}

func (m Model) renderProjects() string {
	width, height := m.size()
	projects := m.visibleProjects()
	groups := view.GroupTasksByProject(m.app.Tasks.Snapshot().Items)

	s := m.header(fmt.Sprintf("Projects (%d)", len(projects)))
	if len(projects) == 0 {
		if m.filterText != "" {
			s += HelpStyle.Render("  No projects match /"+m.filterText) + "\n"
		} else {
			s += HelpStyle.Render("  No projects yet. Press 'a' to create one.") + "\n"
		}
	}

	for i, p := range projects {
		cursor := "  "
		style := ItemStyle
		if i == m.projCursor {
			cursor = "❯ "
			style = ItemSelectedStyle
		}
		line := fmt.Sprintf("%s%-24s %3d tasks", cursor, truncate(p.Name, 24), view.TaskCount(groups, p.ID))
		s += style.Render(line)
		if p.Description != "" {
			s += HelpStyle.Render("  " + truncate(p.Description, width-46))
		}
		s += "\n"
	}

	return ListStyle.Width(width).Height(height - 2).Render(s)
}

func (m Model) renderTasks() string {
	width, height := m.size()
	tasks := m.visibleTasks()
	all := view.GroupTasksByProject(m.app.Tasks.Snapshot().Items)[m.route.ProjectID]
	counts := view.CountByStatus(all)

	title := fmt.Sprintf("%s  %d pending · %d in progress · %d completed",
		m.projectName(m.route.ProjectID),
		counts[model.StatusPending], counts[model.StatusInProgress], counts[model.StatusCompleted])
	s := m.header(title)
	s += HelpStyle.Render("Showing: "+view.StatusFilterLabel(m.statusFilter)) + "\n\n"

	if len(tasks) == 0 {
		s += HelpStyle.Render("  No tasks. Press 'a' to add one.") + "\n"
	}

	for i, t := range tasks {
		cursor := "  "
		style := ItemStyle
		if i == m.taskCursor {
			cursor = "❯ "
			style = ItemSelectedStyle
		}
		if t.IsDone() {
			style = TaskDoneStyle
		}
		cols := max(width-36, 10)
		line := fmt.Sprintf(" %-*s ", cols, truncate(t.Title, cols))
		s += style.Render(cursor+statusIcon(t.Status)+line) + FormatStatus(t.Status) + "\n"
	}

	return ListStyle.Width(width).Height(height - 2).Render(s)
}

func (m Model) renderDetail() string {
	width, height := m.size()
	if m.detail == nil {
		return ListStyle.Width(width).Height(height - 2).Render(m.header("Task"))
	}
	t := m.detail

	s := m.header(t.Title)
	s += LabelStyle.Render("Project   ") + m.projectName(t.ProjectID) + "\n"
	s += LabelStyle.Render("Status    ") + FormatStatus(t.Status) + "\n"
	if created := t.Created(); !created.IsZero() {
		s += LabelStyle.Render("Created   ") + created.Format("2006-01-02 15:04") + "\n"
	}
	s += "\n"
	if t.Description != "" {
		s += lipgloss.NewStyle().Width(width-8).Render(t.Description) + "\n"
	} else {
		s += HelpStyle.Render("No description.") + "\n"
	}

	return ListStyle.Width(width).Height(height - 2).Render(s)
}

func (m Model) renderModal() string {
	if m.mode == ModeConfirm {
		kind := "task"
		if m.confirm.project {
			kind = "project"
		}
		content := lipgloss.NewStyle().Bold(true).Foreground(Danger).Render("Delete "+kind+"?") + "\n\n"
		content += truncate(m.confirm.label, 48) + "\n"
		if m.confirm.project {
			content += HelpStyle.Render("All of its tasks are deleted too.") + "\n"
		}
		content += "\n" + HelpStyle.Render("y:delete  any other key:cancel")
		return ModalStyle.Width(56).Render(content)
	}

	content := lipgloss.NewStyle().Bold(true).Render(m.modal.title) + "\n\n"
	content += m.modal.view()
	if m.modal.busy {
		content += m.spinner.View() + " Saving..."
	} else {
		content += HelpStyle.Render("Enter:save  Tab:next field  Esc:cancel")
	}
	return ModalStyle.Width(56).Render(content)
}

func (m Model) renderStatusBar() string {
	width, _ := m.size()
	if m.mode == ModeFilter {
		return StatusBarStyle.Width(width).Render("/" + m.search.View())
	}

	var help string
	switch m.route.Screen {
	case app.ScreenProjects:
		help = "enter:open  a:add  e:edit  d:del  /:search  r:refresh  ?:help  L:logout  q:quit"
	case app.ScreenTasks:
		help = "enter:open  a:add  e:edit  x:status  f:filter  d:del  /:search  ←:back  q:quit"
	case app.ScreenTask:
		help = "x:status  e:edit  d:del  r:refresh  ←:back  q:quit"
	default:
		help = "ctrl+c:quit"
	}
	if m.filterText != "" {
		help = fmt.Sprintf("/%s  Esc:clear", m.filterText)
	} else if m.message != "" {
		help = m.message
	}

	if user := m.app.Session.Snapshot().Profile; user != nil {
		right := user.Email
		if avail := width - lipgloss.Width(help) - lipgloss.Width(right) - 4; avail > 0 {
			help += strings.Repeat(" ", avail) + right
		}
	}

	return StatusBarStyle.Width(width).Render(help)
}

func (m Model) renderHelp() string {
	width, height := m.size()
	help := `
╭─── Keyboard Shortcuts ─────╮
│                            │
│  Navigation                │
│  ──────────                │
│  j/↓      Move down        │
│  k/↑      Move up          │
│  enter/l  Open             │
│  esc/h    Back             │
│  /        Search           │
│                            │
│  Actions                   │
│  ───────                   │
│  a        Add              │
│  e        Edit             │
│  d        Delete           │
│  x        Cycle status     │
│  f        Status filter    │
│  r        Refresh          │
│                            │
│  Other                     │
│  ─────                     │
│  L        Logout           │
│  ?        Toggle help      │
│  q        Quit             │
│                            │
╰────────────────────────────╯

       Press any key to close
`
	return lipgloss.Place(width, height-2, lipgloss.Center, lipgloss.Center, help)
}
