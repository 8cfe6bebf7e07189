// Package agent implements the background delivery agent: a loop that owns
// reminder timers independent of the UI program's lifetime and raises OS
// notifications when they elapse. The foreground talks to it only through
// asynchronous schedule/cancel commands; no replies are sent back and no
// state is shared. Everything durable lives in the schedule store, so the
// agent dying at any point delays delivery but never loses a schedule.
package agent

import (
	"log/slog"
	"time"

	"taskflow/internal/notify"
)

// Delivery is the payload of a schedule command: the denormalized display
// text and absolute fire time for one pending reminder. It deliberately
// carries no task state, so the agent never reads the task cache.
type Delivery struct {
	ID     string
	FireAt time.Time
	Title  string
	Body   string
}

type scheduleCommand struct {
	delivery Delivery
}

type cancelCommand struct {
	id string
}

// firedEvent identifies one timer elapse. The generation lets the loop
// tell a live fire from one raced out by a replacing schedule: stopping
// an already-elapsed timer is a no-op, so the stale id can still arrive
// on firedCh after the id has been re-armed.
type firedEvent struct {
	id  string
	gen uint64
}

type armedTimer struct {
	timer *time.Timer
	gen   uint64
}

// Agent holds pending delivery timers and fires notifications as they
// elapse. All timer state is confined to the loop goroutine.
type Agent struct {
	notifier notify.Notifier
	cmdCh    chan interface{}
	firedCh  chan firedEvent
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates an Agent that delivers through the given notifier.
func New(n notify.Notifier) *Agent {
	return &Agent{
		notifier: n,
		cmdCh:    make(chan interface{}, 64),
		firedCh:  make(chan firedEvent, 64),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the delivery loop.
func (a *Agent) Start() {
	go a.loop()
}

// Stop terminates the delivery loop and waits for it to exit. Pending
// timers are discarded; their entries remain in the schedule store for the
// reconciler to recover.
func (a *Agent) Stop() {
	close(a.stopCh)
	<-a.doneCh
}

// Schedule arms (or re-arms, replacing any existing timer for the same id)
// a delivery. A fire time already in the past delivers immediately. The
// command is dropped if the agent's queue is full; the store backstop makes
// that a delayed delivery, not a lost one.
func (a *Agent) Schedule(d Delivery) {
	select {
	case a.cmdCh <- scheduleCommand{delivery: d}:
	default:
		slog.Warn("agent command queue full, dropping schedule", "id", d.ID)
	}
}

// Cancel revokes a pending delivery if one exists for the id. Canceling an
// unknown id is a no-op.
func (a *Agent) Cancel(id string) {
	select {
	case a.cmdCh <- cancelCommand{id: id}:
	default:
		slog.Warn("agent command queue full, dropping cancel", "id", id)
	}
}

// loop processes commands and elapsed timers until stopped.
func (a *Agent) loop() {
	defer close(a.doneCh)

	var gen uint64
	timers := make(map[string]armedTimer)
	pending := make(map[string]Delivery)

	defer func() {
		for _, t := range timers {
			t.timer.Stop()
		}
	}()

	for {
		select {
		case cmd := <-a.cmdCh:
			switch c := cmd.(type) {
			case scheduleCommand:
				if t, ok := timers[c.delivery.ID]; ok {
					t.timer.Stop()
				}
				delay := time.Until(c.delivery.FireAt)
				if delay < 0 {
					delay = 0
				}
				gen++
				id, g := c.delivery.ID, gen
				pending[id] = c.delivery
				timers[id] = armedTimer{
					gen: g,
					timer: time.AfterFunc(delay, func() {
						select {
						case a.firedCh <- firedEvent{id: id, gen: g}:
						case <-a.stopCh:
						}
					}),
				}
			case cancelCommand:
				if t, ok := timers[c.id]; ok {
					t.timer.Stop()
					delete(timers, c.id)
					delete(pending, c.id)
				}
			}

		case ev := <-a.firedCh:
			t, ok := timers[ev.id]
			if !ok || t.gen != ev.gen {
				// Canceled or replaced between elapse and dispatch.
				continue
			}
			d := pending[ev.id]
			delete(timers, ev.id)
			delete(pending, ev.id)
			// The store entry is left in place on purpose: removal is the
			// reconciler's job, so a kill between elapse and notify still
			// recovers on the next foreground pass.
			a.notifier.Notify(d.Title, d.Body)

		case <-a.stopCh:
			return
		}
	}
}
