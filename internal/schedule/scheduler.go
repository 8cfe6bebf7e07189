// Package schedule implements the foreground half of the reminder pipeline:
// deriving fire times from the live task list, arming in-process timers,
// mirroring first fires to the durable store and the background delivery
// agent, reconciling fires missed while the program was not foregrounded,
// and arbitrating the single visible reminder.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"taskflow/internal/agent"
	"taskflow/internal/model"
	"taskflow/internal/store"
)

// DeliveryAgent is the command surface of the background delivery agent.
// Only schedule and cancel are expressible; nothing comes back.
type DeliveryAgent interface {
	Schedule(d agent.Delivery)
	Cancel(id string)
}

// recurrence is one armed repeat loop for a fired reminder. Recurring fires
// are in-process only: the agent and the store see just the first fire.
type recurrence struct {
	ticker *time.Ticker
	done   chan struct{}
}

// Scheduler translates the current task list into armed timers and durable
// schedule state. Its lifetime is the program session: timers do not survive
// a restart, which is exactly why every first fire is mirrored out.
type Scheduler struct {
	schedules store.ScheduleStore
	agent     DeliveryAgent

	// onFire funnels every fire into the presentation controller and
	// reports whether the presentation was accepted.
	onFire func(Presentation) bool

	// repeatEvery resolves a repeat interval to its period. Overridden in
	// tests to compress recurrence.
	repeatEvery func(model.RepeatInterval) time.Duration

	mu          sync.Mutex
	timers      map[string]*time.Timer
	recurrences []*recurrence
	mirrored    map[string]struct{}
}

// NewScheduler creates a Scheduler that mirrors schedules to the given store
// and agent and delivers fires through onFire.
func NewScheduler(
	schedules store.ScheduleStore,
	deliveryAgent DeliveryAgent,
	onFire func(Presentation) bool,
) *Scheduler {
	return &Scheduler{
		schedules:   schedules,
		agent:       deliveryAgent,
		onFire:      onFire,
		repeatEvery: model.RepeatInterval.Every,
		timers:      make(map[string]*time.Timer),
		mirrored:    make(map[string]struct{}),
	}
}

// Rebuild recomputes the armed timer set from the full current task list.
// Teardown of everything armed by the previous run strictly precedes any new
// arming, so no stale timer can fire for a reminder canceled in this pass and
// repeated rebuilds never accumulate duplicates. Recomputation is idempotent;
// callers invoke it on every task list change rather than diffing.
func (s *Scheduler) Rebuild(ctx context.Context, tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teardownLocked(ctx)

	now := time.Now()
	for _, task := range tasks {
		if task.Completed() || task.Reminder == nil {
			continue
		}
		reminder := *task.Reminder
		if err := reminder.Validate(); err != nil {
			if !errors.Is(err, model.ErrInvalidReminder) {
				slog.Warn("skipping malformed reminder",
					"task", task.ID, "error", err)
			}
			continue
		}

		entry := model.NewScheduleEntry(task, reminder)

		// Mirror the first fire before (or regardless of) arming, so the
		// schedule survives the program closing before fireAt. Storage
		// trouble degrades to session-only scheduling; never fatal.
		if err := s.schedules.PutScheduleEntry(ctx, entry); err != nil {
			slog.Warn("persisting schedule entry", "id", entry.ID, "error", err)
		}
		s.agent.Schedule(agent.Delivery{
			ID:     entry.ID,
			FireAt: entry.FireTime(),
			Title:  entry.Title,
			Body:   entry.Body,
		})
		s.mirrored[entry.ID] = struct{}{}

		fireAt := entry.FireTime()
		if !fireAt.After(now) {
			// Already due, e.g. a restart happened after the original fire
			// time. Fire synchronously instead of waiting.
			s.fireLocked(ctx, task, reminder)
			continue
		}

		id := entry.ID
		taskCopy := task
		s.timers[id] = time.AfterFunc(time.Until(fireAt), func() {
			s.fireTimer(id, taskCopy, reminder)
		})
	}
}

// Stop tears down all timers, recurrences, and mirrored schedule state.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardownLocked(ctx)
}

// ArmedIDs returns the schedule ids with a pending in-process first-fire
// timer. Used by the status bar and by tests.
func (s *Scheduler) ArmedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.timers))
	for id := range s.timers {
		ids = append(ids, id)
	}
	return ids
}

// teardownLocked stops every in-process timer and recurrence and issues
// delete+cancel for every entry mirrored by the previous run. Callers hold
// s.mu.
func (s *Scheduler) teardownLocked(ctx context.Context) {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for _, r := range s.recurrences {
		r.ticker.Stop()
		close(r.done)
	}
	s.recurrences = nil

	for id := range s.mirrored {
		if err := s.schedules.DeleteScheduleEntry(ctx, id); err != nil {
			slog.Warn("deleting superseded schedule entry", "id", id, "error", err)
		}
		s.agent.Cancel(id)
		delete(s.mirrored, id)
	}
}

// fireTimer runs when an in-process first-fire timer elapses.
func (s *Scheduler) fireTimer(id string, task model.Task, reminder model.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, armed := s.timers[id]; !armed {
		// Torn down between elapse and dispatch.
		return
	}
	delete(s.timers, id)
	s.fireLocked(context.Background(), task, reminder)
}

// fireLocked delivers one live fire: it offers the pair to the presentation
// controller, consumes the durable mirror if the presentation was accepted,
// and arms the in-process recurrence loop for repeating reminders. Callers
// hold s.mu.
func (s *Scheduler) fireLocked(ctx context.Context, task model.Task, reminder model.Reminder) {
	id := model.ScheduleID(task.ID, reminder.SetAt)

	if s.onFire(Presentation{Task: task, Reminder: reminder}) {
		// Presented live: the backstop entry has served its purpose, so
		// consume it here instead of leaving a duplicate for the
		// reconciler or the agent.
		if err := s.schedules.DeleteScheduleEntry(ctx, id); err != nil {
			slog.Warn("consuming fired schedule entry", "id", id, "error", err)
		}
		s.agent.Cancel(id)
		delete(s.mirrored, id)
	}

	period := s.repeatEvery(reminder.Repeat)
	if period <= 0 {
		return
	}

	rec := &recurrence{
		ticker: time.NewTicker(period),
		done:   make(chan struct{}),
	}
	s.recurrences = append(s.recurrences, rec)
	p := Presentation{Task: task, Reminder: reminder}
	go func() {
		for {
			select {
			case <-rec.ticker.C:
				s.onFire(p)
			case <-rec.done:
				return
			}
		}
	}()
}
