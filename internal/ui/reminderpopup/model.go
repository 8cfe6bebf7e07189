package reminderpopup

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskflow/internal/model"
	"taskflow/internal/theme"
)

// NotifyLaterMsg is dispatched when the user defers the shown reminder.
type NotifyLaterMsg struct{}

// DontShowAgainMsg is dispatched when the user permanently dismisses the
// shown reminder.
type DontShowAgainMsg struct{}

// Model renders the modal reminder dialog. It has no dismissal besides its
// two actions: a shown reminder must be resolved.
type Model struct {
	task     model.Task
	reminder model.Reminder
	width    int
}

// New creates a reminder popup model.
func New(width int) Model {
	return Model{width: width}
}

// Show sets the {task, reminder} pair to display.
func (m *Model) Show(task model.Task, reminder model.Reminder) {
	m.task = task
	m.reminder = reminder
}

// SetWidth updates the popup width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Update handles key input while the popup is visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "l", "enter":
		return m, func() tea.Msg { return NotifyLaterMsg{} }
	case "d":
		return m, func() tea.Msg { return DontShowAgainMsg{} }
	}
	return m, nil
}

// View renders the reminder dialog.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Render("⏰ Reminder")

	body := m.task.Title
	if m.task.CompanyName != "" {
		body += "\n" + theme.HelpStyle.Render(m.task.CompanyName)
	}

	repeat := ""
	if m.reminder.Repeat != model.RepeatNone {
		repeat = theme.HelpStyle.Render(
			fmt.Sprintf("repeats every %s", m.reminder.Repeat),
		)
	}

	actions := theme.HelpStyle.Render("[l] notify me later   [d] don't show again")

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", body)
	if repeat != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, content, repeat)
	}
	content = lipgloss.JoinVertical(lipgloss.Left, content, "", actions)

	width := m.width / 2
	if width < 40 {
		width = 40
	}
	return theme.PopupStyle.Width(width).Render(content)
}
