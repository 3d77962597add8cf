package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formKind int

const (
	formNone formKind = iota
	formLogin
	formRegister
	formNewProject
	formEditProject
	formNewTask
	formEditTask
)

type field struct {
	label  string
	value  string
	secret bool
}

// form is a column of labelled inputs with one focused
type form struct {
	kind     formKind
	title    string
	labels   []string
	inputs   []textinput.Model
	focus    int
	err      string
	busy     bool
	targetID int64
}

func newForm(kind formKind, title string, fields ...field) form {
	f := form{kind: kind, title: title}
	for i, fd := range fields {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 40
		ti.SetValue(fd.value)
		if fd.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		if i == 0 {
			ti.Focus()
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, ti)
	}
	return f
}

func (f *form) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) onLast() bool {
	return f.focus == len(f.inputs)-1
}

func (f *form) value(i int) string {
	if i >= len(f.inputs) {
		return ""
	}
	return f.inputs[i].Value()
}

// handleKey moves focus or edits the focused input. It reports true when
// enter was pressed on the last field.
func (f *form) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Next):
		f.setFocus(f.focus + 1)
		return false, nil
	case key.Matches(msg, keys.Prev):
		f.setFocus(f.focus - 1)
		return false, nil
	case msg.Type == tea.KeyEnter:
		if f.onLast() {
			return true, nil
		}
		f.setFocus(f.focus + 1)
		return false, nil
	}
	return false, f.update(msg)
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) view() string {
	var b strings.Builder
	for i, in := range f.inputs {
		b.WriteString(LabelStyle.Render(f.labels[i]) + "\n")
		b.WriteString(in.View() + "\n\n")
	}
	if f.err != "" {
		b.WriteString(ErrorStyle.Render(f.err) + "\n\n")
	}
	return b.String()
}
