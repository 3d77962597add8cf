package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/taskboard/internal/model"
)

// Color palette based on TUI design
var (
	// Status colors
	Pending    = lipgloss.Color("#FFE66D") // Yellow
	InProgress = lipgloss.Color("#FFB347") // Orange
	Completed  = lipgloss.Color("#95E1A3") // Green
	Danger     = lipgloss.Color("#FF6B6B") // Red

	// UI colors
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Highlight = lipgloss.Color("#4ECDC4")
)

// Styles
var (
	// Header
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	// Lists
	ListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	ItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	ItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	TaskDoneStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Strikethrough(true).
			Padding(0, 1)

	// Status badges
	PendingStyle    = lipgloss.NewStyle().Foreground(Pending)
	InProgressStyle = lipgloss.NewStyle().Foreground(InProgress).Bold(true)
	CompletedStyle  = lipgloss.NewStyle().Foreground(Completed)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	// Input modal
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	LabelStyle = lipgloss.NewStyle().Foreground(Secondary)
	ErrorStyle = lipgloss.NewStyle().Foreground(Danger)

	// Help text
	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// StatusStyle returns the style for a task status
func StatusStyle(s model.TaskStatus) lipgloss.Style {
	switch s {
	case model.StatusCompleted:
		return CompletedStyle
	case model.StatusInProgress:
		return InProgressStyle
	default:
		return PendingStyle
	}
}

// FormatStatus returns a colored status label
func FormatStatus(s model.TaskStatus) string {
	return StatusStyle(s).Render(s.Label())
}

// statusIcon is the checkbox drawn in front of a task
func statusIcon(s model.TaskStatus) string {
	switch s {
	case model.StatusCompleted:
		return "[x]"
	case model.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}
