package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"taskflow/internal/keys"
	"taskflow/internal/mailer"
	"taskflow/internal/model"
	"taskflow/internal/schedule"
	"taskflow/internal/source"
	"taskflow/internal/store"
	appsync "taskflow/internal/sync"
	"taskflow/internal/ui"
	"taskflow/internal/ui/reminderform"
	"taskflow/internal/ui/reminderpopup"
	"taskflow/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewReminderForm
	ViewReminderPopup
)

// reminderShownMsg carries a presentation from the presenter to the UI.
type reminderShownMsg struct {
	presentation schedule.Presentation
}

// reminderResolvedMsg is sent when the presenter returns to idle.
type reminderResolvedMsg struct{}

// statusMsg updates the transient status line.
type statusMsg struct {
	text string
}

// Deps bundles the collaborators the root model is wired with.
type Deps struct {
	Store      *store.SQLiteStore
	Source     source.Source
	Poller     *appsync.Poller
	Scheduler  *schedule.Scheduler
	Reconciler *schedule.Reconciler
	Presenter  *schedule.Presenter
	Mailer     *mailer.Mailer
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the reminder pipeline's foreground triggers.
type Model struct {
	currentView ViewState
	layout      ui.Layout
	keys        *keys.KeyMap

	store      *store.SQLiteStore
	src        source.Source
	poller     *appsync.Poller
	scheduler  *schedule.Scheduler
	reconciler *schedule.Reconciler
	presenter  *schedule.Presenter
	mail       *mailer.Mailer

	taskList tasklist.Model
	form     reminderform.Model
	popup    reminderpopup.Model

	ready     bool
	status    string
	authError string
}

// New creates the root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewList,
		keys:        k,
		store:       d.Store,
		src:         d.Source,
		poller:      d.Poller,
		scheduler:   d.Scheduler,
		reconciler:  d.Reconciler,
		presenter:   d.Presenter,
		mail:        d.Mailer,
		taskList:    tasklist.New(d.Store, k, 80, 24),
		form:        reminderform.New(80, 24),
		popup:       reminderpopup.New(80),
	}
}

// Init starts polling, subscribes to the presenter, and performs the
// startup drain of reminders missed while the program was closed.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.taskList.Init(),
		m.poller.Start(),
		m.waitForShown(),
		m.waitForResolved(),
		m.drainMissed(),
	)
}

// Update routes messages to the pipeline and the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.taskList.SetSize(msg.Width, m.layout.ContentHeight())
		m.popup.SetWidth(msg.Width)
		m.ready = true
		return m, nil

	case tea.FocusMsg:
		// Foreground activation: recover anything that came due while the
		// terminal was backgrounded.
		return m, m.drainMissed()

	case appsync.SyncResultMsg:
		return m.handleSyncResult(msg)

	case reminderShownMsg:
		m.popup.Show(msg.presentation.Task, msg.presentation.Reminder)
		m.currentView = ViewReminderPopup
		return m, m.waitForShown()

	case reminderResolvedMsg:
		if m.currentView == ViewReminderPopup {
			m.currentView = ViewList
		}
		return m, tea.Batch(m.waitForResolved(), m.drainMissed(), m.taskList.LoadTasks())

	case reminderpopup.NotifyLaterMsg:
		m.presenter.NotifyLater()
		return m, nil

	case reminderpopup.DontShowAgainMsg:
		return m, m.dismissForever()

	case reminderform.ReminderSetMsg:
		m.currentView = ViewList
		return m, m.setReminder(msg.TaskID, &msg.Reminder)

	case reminderform.ReminderFormCancelMsg:
		m.currentView = ViewList
		return m, nil

	case statusMsg:
		m.status = msg.text
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m.updateActiveView(msg)
}

// handleKeys processes global and view-local key input.
func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The popup is modal: keys go nowhere else until it is resolved.
	if m.currentView == ViewReminderPopup {
		var cmd tea.Cmd
		m.popup, cmd = m.popup.Update(msg)
		return m, cmd
	}

	if m.currentView == ViewReminderForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}

	// While the search input has focus, every key belongs to it.
	if m.taskList.Searching() {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "R":
		return m, m.poller.Refresh()
	case "r":
		if task := m.taskList.SelectedTask(); task != nil && !task.Completed() {
			cmd := m.form.Start(*task)
			m.currentView = ViewReminderForm
			return m, cmd
		}
		return m, nil
	case "x":
		if task := m.taskList.SelectedTask(); task != nil && task.Reminder != nil {
			return m, m.setReminder(task.ID, nil)
		}
		return m, nil
	case "c":
		if task := m.taskList.SelectedTask(); task != nil && !task.Completed() {
			return m, m.completeTask(*task)
		}
		return m, nil
	case "m":
		if task := m.taskList.SelectedTask(); task != nil {
			return m, m.draftCompanyEmail(task.CompanyID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

// updateActiveView forwards non-key messages to the active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.currentView {
	case ViewReminderForm:
		m.form, cmd = m.form.Update(msg)
	default:
		m.taskList, cmd = m.taskList.Update(msg)
	}
	return m, cmd
}

// handleSyncResult feeds a refreshed task snapshot into the scheduler and
// the task list.
func (m Model) handleSyncResult(msg appsync.SyncResultMsg) (tea.Model, tea.Cmd) {
	if msg.AuthError != "" {
		m.authError = msg.AuthError
	} else if msg.Error == nil {
		m.authError = ""
	}

	var rebuild tea.Cmd
	if msg.Error == nil {
		scheduler := m.scheduler
		tasks := msg.Tasks
		rebuild = func() tea.Msg {
			scheduler.Rebuild(context.Background(), tasks)
			return nil
		}
	}

	return m, tea.Batch(
		rebuild,
		m.taskList.LoadTasks(),
		m.poller.WaitForNextResult(),
	)
}

// waitForShown subscribes to the presenter's shown channel.
func (m Model) waitForShown() tea.Cmd {
	p := m.presenter
	return func() tea.Msg {
		presentation, ok := <-p.Shown()
		if !ok {
			return nil
		}
		return reminderShownMsg{presentation: presentation}
	}
}

// waitForResolved subscribes to the presenter's idle channel.
func (m Model) waitForResolved() tea.Cmd {
	p := m.presenter
	return func() tea.Msg {
		_, ok := <-p.Idle()
		if !ok {
			return nil
		}
		return reminderResolvedMsg{}
	}
}

// drainMissed consumes the next overdue persisted schedule entry, if the
// presenter is idle. Drained entries surface through the shown channel.
func (m Model) drainMissed() tea.Cmd {
	presenter := m.presenter
	reconciler := m.reconciler
	return func() tea.Msg {
		if presenter.Current() != nil {
			return nil
		}
		reconciler.DrainNext(context.Background(), time.Now())
		return nil
	}
}

// dismissForever resolves the shown reminder permanently and refreshes the
// task list to reflect the cleared reminder.
func (m Model) dismissForever() tea.Cmd {
	presenter := m.presenter
	loadTasks := m.taskList.LoadTasks()
	return tea.Sequence(
		func() tea.Msg {
			if err := presenter.DismissForever(context.Background()); err != nil {
				slog.Warn("dismiss forever", "error", err)
			}
			return nil
		},
		loadTasks,
	)
}

// setReminder replaces (or, with nil, clears) the reminder on a task in
// both the backend and the local cache, then rebuilds the schedule set.
func (m Model) setReminder(taskID string, reminder *model.Reminder) tea.Cmd {
	s := m.store
	src := m.src
	scheduler := m.scheduler
	loadTasks := m.taskList.LoadTasks()
	return tea.Sequence(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			task, err := s.GetTaskByID(ctx, taskID)
			if err != nil {
				return statusMsg{text: fmt.Sprintf("task not found: %v", err)}
			}
			task.Reminder = reminder

			if err := src.UpdateTask(ctx, *task); err != nil {
				slog.Warn("updating task in backend", "task", taskID, "error", err)
			}
			if err := s.SetTaskReminder(ctx, taskID, reminder); err != nil {
				return statusMsg{text: fmt.Sprintf("saving reminder: %v", err)}
			}

			rebuildFromStore(ctx, s, scheduler)

			if reminder == nil {
				return statusMsg{text: "reminder cleared"}
			}
			return statusMsg{text: fmt.Sprintf(
				"reminder set for %s", reminder.FireTime().Local().Format("15:04"),
			)}
		},
		loadTasks,
	)
}

// completeTask marks a task completed in the backend and the cache. The
// following rebuild disqualifies and cancels its reminder automatically.
func (m Model) completeTask(task model.Task) tea.Cmd {
	s := m.store
	src := m.src
	scheduler := m.scheduler
	loadTasks := m.taskList.LoadTasks()
	return tea.Sequence(
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			task.Status = model.StatusCompleted
			task.UpdatedAt = time.Now().UTC()

			if err := src.UpdateTask(ctx, task); err != nil {
				slog.Warn("completing task in backend", "task", task.ID, "error", err)
			}
			if err := s.UpsertTasks(ctx, []model.Task{task}); err != nil {
				return statusMsg{text: fmt.Sprintf("saving task: %v", err)}
			}

			rebuildFromStore(ctx, s, scheduler)

			return statusMsg{text: "task completed"}
		},
		loadTasks,
	)
}

// draftCompanyEmail writes a reminder email draft for the company's open
// tasks.
func (m Model) draftCompanyEmail(companyID string) tea.Cmd {
	s := m.store
	mail := m.mail
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		companies, err := s.GetCompanies(ctx)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("loading companies: %v", err)}
		}
		var company *model.Company
		for i := range companies {
			if companies[i].ID == companyID {
				company = &companies[i]
				break
			}
		}
		if company == nil {
			return statusMsg{text: "no company on this task"}
		}

		tasks, err := s.GetTasks(ctx, store.TaskFilter{CompanyID: &companyID})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("loading tasks: %v", err)}
		}

		path, err := mail.DraftReminder(*company, tasks)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("drafting email: %v", err)}
		}
		return statusMsg{text: "draft written: " + path}
	}
}

// rebuildFromStore reruns the scheduler against the cached task snapshot.
func rebuildFromStore(ctx context.Context, s store.Store, scheduler *schedule.Scheduler) {
	tasks, err := s.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		slog.Warn("loading tasks for schedule rebuild", "error", err)
		return
	}
	scheduler.Rebuild(ctx, tasks)
}

// View renders the full application frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	syncStatus := m.status
	if m.authError != "" {
		syncStatus = m.authError
	} else if syncStatus == "" {
		st := m.poller.Status()
		switch st.State {
		case appsync.SyncRunning:
			syncStatus = "syncing..."
		case appsync.SyncError:
			syncStatus = "sync error"
		default:
			if !st.LastSync.IsZero() {
				syncStatus = "synced " + st.LastSync.Local().Format("15:04")
			}
		}
	}

	header := m.layout.RenderHeader("taskflow", syncStatus)
	statusBar := m.layout.RenderStatusBar(
		"r set reminder · x clear · c complete · m email · R refresh · q quit",
	)

	var content string
	switch m.currentView {
	case ViewReminderForm:
		content = m.form.View()
	case ViewReminderPopup:
		content = m.layout.RenderModal(m.popup.View())
	default:
		content = m.taskList.View()
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}
