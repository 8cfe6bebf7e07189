package schedule

import (
	"context"
	"sync"
	"time"

	"taskflow/internal/agent"
	"taskflow/internal/model"
)

// fakeAgent records schedule and cancel commands.
type fakeAgent struct {
	mu        sync.Mutex
	scheduled []agent.Delivery
	canceled  []string
}

func (a *fakeAgent) Schedule(d agent.Delivery) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scheduled = append(a.scheduled, d)
}

func (a *fakeAgent) Cancel(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.canceled = append(a.canceled, id)
}

func (a *fakeAgent) scheduledIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	ids := make([]string, 0, len(a.scheduled))
	for _, d := range a.scheduled {
		ids = append(ids, d.ID)
	}
	return ids
}

func (a *fakeAgent) canceledIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.canceled...)
}

// memScheduleStore is an in-memory ScheduleStore for timer-heavy tests
// that do not need SQLite.
type memScheduleStore struct {
	mu      sync.Mutex
	entries map[string]model.ScheduleEntry
}

func newMemScheduleStore() *memScheduleStore {
	return &memScheduleStore{entries: make(map[string]model.ScheduleEntry)}
}

func (m *memScheduleStore) PutScheduleEntry(_ context.Context, entry model.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.ID] = entry
	return nil
}

func (m *memScheduleStore) DeleteScheduleEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *memScheduleStore) ConsumeNextDueEntry(
	_ context.Context,
	now time.Time,
) (*model.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var best *model.ScheduleEntry
	for id := range m.entries {
		entry := m.entries[id]
		if entry.FireAt > now.UnixMilli() {
			continue
		}
		if best == nil || entry.FireAt < best.FireAt {
			e := entry
			best = &e
		}
	}
	if best == nil {
		return nil, nil
	}
	delete(m.entries, best.ID)
	return best, nil
}

func (m *memScheduleStore) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[id]
	return ok
}

func (m *memScheduleStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// fakeNotifier records notifications and chimes.
type fakeNotifier struct {
	mu       sync.Mutex
	notified []string
	chimes   int
}

func (n *fakeNotifier) Notify(title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, title+"|"+body)
}

func (n *fakeNotifier) Chime() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.chimes++
}

func (n *fakeNotifier) notifications() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.notified...)
}

func (n *fakeNotifier) chimeCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chimes
}

// fakeClearer records cleared task ids.
type fakeClearer struct {
	mu      sync.Mutex
	cleared []string
	err     error
}

func (c *fakeClearer) ClearTaskReminder(_ context.Context, taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared = append(c.cleared, taskID)
	return c.err
}

func (c *fakeClearer) clearedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.cleared...)
}

// fireCollector is an onFire sink that records presentations and answers
// with a configurable acceptance.
type fireCollector struct {
	mu     sync.Mutex
	fires  []Presentation
	accept bool
	ch     chan Presentation
}

func newFireCollector(accept bool) *fireCollector {
	return &fireCollector{accept: accept, ch: make(chan Presentation, 16)}
}

func (f *fireCollector) onFire(p Presentation) bool {
	f.mu.Lock()
	f.fires = append(f.fires, p)
	f.mu.Unlock()
	select {
	case f.ch <- p:
	default:
	}
	return f.accept
}

func (f *fireCollector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fires)
}

// taskWithReminder builds a pending task carrying the given reminder.
func taskWithReminder(id string, reminder model.Reminder) model.Task {
	return model.Task{
		ID:          id,
		Title:       "Call " + id,
		Status:      model.StatusPending,
		CompanyName: "Acme Corp",
		Reminder:    &reminder,
	}
}
