package schedule

import (
	"context"
	"log/slog"
	"time"

	"taskflow/internal/store"
)

// Reconciler recovers reminders whose fire time passed while the program was
// closed or backgrounded: the in-process timer never ran, but the durable
// schedule entry is still there. It drains one entry per invocation so
// presentations stay serialized; the presenter's idle signal (and each later
// focus-gained event) pulls the next one.
type Reconciler struct {
	schedules store.ScheduleStore
	agent     DeliveryAgent
	offer     func(Presentation) bool
}

// NewReconciler creates a Reconciler draining into offer.
func NewReconciler(
	schedules store.ScheduleStore,
	deliveryAgent DeliveryAgent,
	offer func(Presentation) bool,
) *Reconciler {
	return &Reconciler{
		schedules: schedules,
		agent:     deliveryAgent,
		offer:     offer,
	}
}

// DrainNext consumes the next overdue schedule entry, if any, and hands its
// {task, reminder} pair to the presentation controller. It reports whether
// an entry was consumed. Storage failure is absorbed: a missed reminder is a
// degraded-UX event, not an error the UI should see.
func (r *Reconciler) DrainNext(ctx context.Context, now time.Time) bool {
	entry, err := r.schedules.ConsumeNextDueEntry(ctx, now)
	if err != nil {
		slog.Warn("draining missed reminders", "error", err)
		return false
	}
	if entry == nil {
		return false
	}

	// The agent may still hold a live timer for this entry (it only fires
	// for us while the program is closed if its host keeps it alive, and it
	// never deletes store entries). Cancel it so consuming here cannot
	// produce a second notification.
	r.agent.Cancel(entry.ID)

	r.offer(Presentation{Task: entry.Task, Reminder: entry.Reminder})
	return true
}
