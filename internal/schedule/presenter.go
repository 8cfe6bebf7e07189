package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"taskflow/internal/model"
	"taskflow/internal/notify"
	"taskflow/internal/store"
)

// Presentation is one {task, reminder} pair surfaced to the user.
type Presentation struct {
	Task     model.Task
	Reminder model.Reminder
}

// ReminderClearer is the task mutation sink: its single operation clears a
// task's reminder so it no longer qualifies for scheduling. Implemented by
// the app layer against the backend and the local cache.
type ReminderClearer interface {
	ClearTaskReminder(ctx context.Context, taskID string) error
}

// Presenter owns the single "currently shown reminder". Every producer of
// fires (live timers, recurrence ticks, reconciled missed entries, snooze
// re-arms) funnels through Offer, which is the only Idle -> Showing
// transition, so two reminders can never be visible at once.
type Presenter struct {
	notifier  notify.Notifier
	clearer   ReminderClearer
	schedules store.ScheduleStore
	agent     DeliveryAgent

	snoozeDelay time.Duration
	sound       bool

	mu      sync.Mutex
	current *Presentation

	shownCh chan Presentation
	idleCh  chan struct{}
}

// NewPresenter creates a Presenter. snoozeDelay is the notify-later
// re-presentation delay; sound globally gates the audible cue.
func NewPresenter(
	n notify.Notifier,
	clearer ReminderClearer,
	schedules store.ScheduleStore,
	agent DeliveryAgent,
	snoozeDelay time.Duration,
	sound bool,
) *Presenter {
	return &Presenter{
		notifier:    n,
		clearer:     clearer,
		schedules:   schedules,
		agent:       agent,
		snoozeDelay: snoozeDelay,
		sound:       sound,
		shownCh:     make(chan Presentation, 4),
		idleCh:      make(chan struct{}, 4),
	}
}

// Offer attempts the Idle -> Showing transition for p. When a reminder is
// already showing the new fire is dropped and false is returned; there is no
// queue, the durable store is the recovery path for anything that matters.
func (pr *Presenter) Offer(p Presentation) bool {
	pr.mu.Lock()
	if pr.current != nil {
		pr.mu.Unlock()
		slog.Debug("reminder dropped, another is showing",
			"task", p.Task.ID)
		return false
	}
	pr.current = &p
	pr.mu.Unlock()

	entry := model.NewScheduleEntry(p.Task, p.Reminder)
	pr.notifier.Notify(entry.Title, entry.Body)
	if p.Reminder.Sound && pr.sound {
		pr.notifier.Chime()
	}

	select {
	case pr.shownCh <- p:
	default:
	}
	return true
}

// Current returns the presentation being shown, or nil when idle.
func (pr *Presenter) Current() *Presentation {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.current == nil {
		return nil
	}
	c := *pr.current
	return &c
}

// NotifyLater resolves the current presentation and re-arms the exact same
// pair after the snooze delay. The re-arm is in-memory only: the pair comes
// back through Offer, not through the store or the agent.
func (pr *Presenter) NotifyLater() {
	pr.mu.Lock()
	p := pr.current
	pr.current = nil
	pr.mu.Unlock()

	if p == nil {
		return
	}

	pair := *p
	time.AfterFunc(pr.snoozeDelay, func() {
		pr.Offer(pair)
	})

	pr.signalIdle()
}

// DismissForever resolves the current presentation and permanently cancels
// its reminder: the task's reminder field is cleared through the mutation
// sink, the persisted entry is removed, and the agent's mirror is revoked.
func (pr *Presenter) DismissForever(ctx context.Context) error {
	pr.mu.Lock()
	p := pr.current
	pr.current = nil
	pr.mu.Unlock()

	if p == nil {
		return nil
	}

	id := model.ScheduleID(p.Task.ID, p.Reminder.SetAt)
	if err := pr.schedules.DeleteScheduleEntry(ctx, id); err != nil {
		slog.Warn("deleting dismissed schedule entry", "id", id, "error", err)
	}
	pr.agent.Cancel(id)

	err := pr.clearer.ClearTaskReminder(ctx, p.Task.ID)
	if err != nil {
		slog.Warn("clearing reminder on task", "task", p.Task.ID, "error", err)
	}

	pr.signalIdle()
	return err
}

// Shown exposes presentations for the UI to render. At most one is
// outstanding at a time.
func (pr *Presenter) Shown() <-chan Presentation {
	return pr.shownCh
}

// Idle signals each return to the Idle state, prompting the caller to drain
// the next missed entry if one is due.
func (pr *Presenter) Idle() <-chan struct{} {
	return pr.idleCh
}

func (pr *Presenter) signalIdle() {
	select {
	case pr.idleCh <- struct{}{}:
	default:
	}
}
