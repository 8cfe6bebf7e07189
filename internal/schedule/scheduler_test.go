package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func futureReminder(offsetMinutes int) model.Reminder {
	return model.Reminder{
		RemindInMinutes: offsetMinutes,
		Repeat:          model.RepeatNone,
		SetAt:           time.Now().UTC(),
	}
}

// pastDueReminder is a valid reminder whose fire time has already elapsed.
func pastDueReminder() model.Reminder {
	return model.Reminder{
		RemindInMinutes: 1,
		Repeat:          model.RepeatNone,
		SetAt:           time.Now().UTC().Add(-time.Hour),
	}
}

func waitForFire(t *testing.T, fires *fireCollector, timeout time.Duration) Presentation {
	t.Helper()
	select {
	case p := <-fires.ch:
		return p
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a fire")
		return Presentation{}
	}
}

func TestRebuildArmsAndMirrorsFutureReminders(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	defer s.Stop(context.Background())

	reminder := futureReminder(60)
	task := taskWithReminder("task-1", reminder)
	id := model.ScheduleID(task.ID, reminder.SetAt)

	s.Rebuild(context.Background(), []model.Task{task})

	assert.True(t, entries.has(id))
	assert.Equal(t, []string{id}, deliveries.scheduledIDs())
	assert.Equal(t, []string{id}, s.ArmedIDs())
	assert.Zero(t, fires.count())
}

func TestRebuildSkipsCompletedAndInvalid(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	defer s.Stop(context.Background())

	completed := taskWithReminder("done", futureReminder(60))
	completed.Status = model.StatusCompleted

	invalid := taskWithReminder("invalid", model.Reminder{
		RemindInMinutes: 0,
		Repeat:          model.RepeatNone,
		SetAt:           time.Now().UTC(),
	})

	noReminder := model.Task{ID: "bare", Title: "Bare", Status: model.StatusPending}

	s.Rebuild(context.Background(), []model.Task{completed, invalid, noReminder})

	assert.Zero(t, entries.size())
	assert.Empty(t, deliveries.scheduledIDs())
	assert.Empty(t, s.ArmedIDs())
}

func TestRebuildFiresPastDueImmediately(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	defer s.Stop(context.Background())

	reminder := pastDueReminder()
	task := taskWithReminder("task-1", reminder)
	id := model.ScheduleID(task.ID, reminder.SetAt)

	s.Rebuild(context.Background(), []model.Task{task})

	// Delivered synchronously, and the accepted fire consumed its mirror.
	require.Equal(t, 1, fires.count())
	assert.False(t, entries.has(id))
	assert.Contains(t, deliveries.canceledIDs(), id)
	assert.Empty(t, s.ArmedIDs())
}

func TestRejectedFireKeepsDurableMirror(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(false)
	s := NewScheduler(entries, deliveries, fires.onFire)
	defer s.Stop(context.Background())

	reminder := pastDueReminder()
	task := taskWithReminder("task-1", reminder)
	id := model.ScheduleID(task.ID, reminder.SetAt)

	s.Rebuild(context.Background(), []model.Task{task})

	// The presentation was dropped, so the entry stays for reconciliation.
	require.Equal(t, 1, fires.count())
	assert.True(t, entries.has(id))
	assert.NotContains(t, deliveries.canceledIDs(), id)
}

func TestRebuildTearsDownPreviousRun(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	defer s.Stop(context.Background())

	reminder := futureReminder(60)
	task := taskWithReminder("task-1", reminder)
	id := model.ScheduleID(task.ID, reminder.SetAt)

	s.Rebuild(context.Background(), []model.Task{task})
	require.True(t, entries.has(id))

	// The reminder was removed upstream; the next rebuild must revoke
	// everything the previous run armed.
	s.Rebuild(context.Background(), []model.Task{{
		ID: "task-1", Title: "Call task-1", Status: model.StatusPending,
	}})

	assert.False(t, entries.has(id))
	assert.Contains(t, deliveries.canceledIDs(), id)
	assert.Empty(t, s.ArmedIDs())
	assert.Zero(t, fires.count())
}

func TestRebuildIsIdempotentForUnchangedTasks(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	defer s.Stop(context.Background())

	task := taskWithReminder("task-1", futureReminder(60))

	s.Rebuild(context.Background(), []model.Task{task})
	s.Rebuild(context.Background(), []model.Task{task})
	s.Rebuild(context.Background(), []model.Task{task})

	assert.Equal(t, 1, entries.size())
	assert.Len(t, s.ArmedIDs(), 1)
	assert.Zero(t, fires.count())
}

func TestTimerFireDelivers(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	defer s.Stop(context.Background())

	// SetAt in the past so the one-minute offset lands just ahead of now.
	reminder := model.Reminder{
		RemindInMinutes: 1,
		Repeat:          model.RepeatNone,
		SetAt:           time.Now().UTC().Add(-time.Minute + 50*time.Millisecond),
	}
	task := taskWithReminder("task-1", reminder)
	id := model.ScheduleID(task.ID, reminder.SetAt)

	s.Rebuild(context.Background(), []model.Task{task})
	require.Len(t, s.ArmedIDs(), 1)

	p := waitForFire(t, fires, time.Second)
	assert.Equal(t, "task-1", p.Task.ID)

	assert.Eventually(t, func() bool {
		return !entries.has(id)
	}, time.Second, 10*time.Millisecond)
}

func TestStopPreventsPendingTimerFromFiring(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)

	reminder := model.Reminder{
		RemindInMinutes: 1,
		Repeat:          model.RepeatNone,
		SetAt:           time.Now().UTC().Add(-time.Minute + 60*time.Millisecond),
	}
	task := taskWithReminder("task-1", reminder)

	s.Rebuild(context.Background(), []model.Task{task})
	s.Stop(context.Background())

	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, fires.count())
	assert.Zero(t, entries.size())
}

func TestRepeatingReminderRefires(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	s.repeatEvery = func(model.RepeatInterval) time.Duration {
		return 20 * time.Millisecond
	}
	defer s.Stop(context.Background())

	reminder := pastDueReminder()
	reminder.Repeat = model.RepeatHourly
	task := taskWithReminder("task-1", reminder)

	s.Rebuild(context.Background(), []model.Task{task})

	// The immediate fire plus at least two recurrence ticks.
	require.Eventually(t, func() bool {
		return fires.count() >= 3
	}, time.Second, 10*time.Millisecond)
}

func TestStopHaltsRecurrence(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	s := NewScheduler(entries, deliveries, fires.onFire)
	s.repeatEvery = func(model.RepeatInterval) time.Duration {
		return 20 * time.Millisecond
	}

	reminder := pastDueReminder()
	reminder.Repeat = model.RepeatHourly
	task := taskWithReminder("task-1", reminder)

	s.Rebuild(context.Background(), []model.Task{task})
	require.Eventually(t, func() bool {
		return fires.count() >= 2
	}, time.Second, 10*time.Millisecond)

	s.Stop(context.Background())
	settled := fires.count()
	time.Sleep(80 * time.Millisecond)
	assert.LessOrEqual(t, fires.count(), settled+1)
}
