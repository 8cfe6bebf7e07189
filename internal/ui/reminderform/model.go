package reminderform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"taskflow/internal/model"
	"taskflow/internal/theme"
)

// ReminderSetMsg is dispatched when the user submits the form. The reminder
// fully replaces any existing reminder on the task.
type ReminderSetMsg struct {
	TaskID   string
	Reminder model.Reminder
}

// ReminderFormCancelMsg is dispatched when the user cancels the form.
type ReminderFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	amount string
	unit   string
	repeat string
	sound  bool
}

// Model is the Bubble Tea model for the set-reminder form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	taskID    string
	taskTitle string
	width     int
	height    int
}

// New creates a new reminder form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{unit: "minutes", repeat: string(model.RepeatNone)},
		width:  width,
		height: height,
	}
}

// Start initializes the form for setting a reminder on the given task.
func (m *Model) Start(task model.Task) tea.Cmd {
	m.taskID = task.ID
	m.taskTitle = task.Title
	m.fb.amount = "30"
	m.fb.unit = "minutes"
	m.fb.repeat = string(model.RepeatNone)
	m.fb.sound = true
	m.form = m.buildForm()
	return m.form.Init()
}

// buildForm constructs the huh form with validation.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Remind in").
				Value(&m.fb.amount).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("enter a whole number")
					}
					if n <= 0 {
						return fmt.Errorf("must be greater than zero")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Unit").
				Options(
					huh.NewOption("minutes", "minutes"),
					huh.NewOption("hours", "hours"),
					huh.NewOption("days", "days"),
				).
				Value(&m.fb.unit),
			huh.NewSelect[string]().
				Title("Repeat").
				Options(
					huh.NewOption("don't repeat", string(model.RepeatNone)),
					huh.NewOption("every hour", string(model.RepeatHourly)),
					huh.NewOption("every day", string(model.RepeatDaily)),
				).
				Value(&m.fb.repeat),
			huh.NewConfirm().
				Title("Play sound").
				Value(&m.fb.sound),
		),
	).WithWidth(m.width - 4)
}

// Update handles messages for the reminder form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return ReminderFormCancelMsg{} }
	}

	return m, cmd
}

// handleSubmit converts the form values into a Reminder and dispatches it.
func (m Model) handleSubmit() tea.Cmd {
	amount, err := strconv.Atoi(strings.TrimSpace(m.fb.amount))
	if err != nil || amount <= 0 {
		return func() tea.Msg { return ReminderFormCancelMsg{} }
	}

	minutes := amount
	switch m.fb.unit {
	case "hours":
		minutes = amount * 60
	case "days":
		minutes = amount * 24 * 60
	}

	reminder := model.Reminder{
		RemindInMinutes: minutes,
		Repeat:          model.RepeatInterval(m.fb.repeat),
		Sound:           m.fb.sound,
		SetAt:           time.Now().UTC(),
	}

	taskID := m.taskID
	return func() tea.Msg {
		return ReminderSetMsg{TaskID: taskID, Reminder: reminder}
	}
}

// View renders the reminder form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := theme.HeaderStyle.Render("Set reminder: " + m.taskTitle)
	return lipgloss.JoinVertical(lipgloss.Left, title, m.form.View())
}
