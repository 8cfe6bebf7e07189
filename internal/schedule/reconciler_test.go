package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func TestDrainNextWithNothingDue(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	r := NewReconciler(entries, deliveries, fires.onFire)

	assert.False(t, r.DrainNext(context.Background(), time.Now()))
	assert.Zero(t, fires.count())
}

func TestDrainNextRecoversMissedReminder(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	r := NewReconciler(entries, deliveries, fires.onFire)

	reminder := model.Reminder{
		RemindInMinutes: 30,
		Repeat:          model.RepeatNone,
		SetAt:           time.Now().UTC().Add(-2 * time.Hour),
	}
	task := taskWithReminder("task-1", reminder)
	entry := model.NewScheduleEntry(task, reminder)
	require.NoError(t, entries.PutScheduleEntry(context.Background(), entry))

	require.True(t, r.DrainNext(context.Background(), time.Now()))

	require.Equal(t, 1, fires.count())
	assert.Equal(t, "task-1", fires.fires[0].Task.ID)
	assert.Equal(t, 30, fires.fires[0].Reminder.RemindInMinutes)

	// Consumed exactly once, and the agent's mirror timer was revoked so it
	// cannot deliver the same reminder again.
	assert.False(t, entries.has(entry.ID))
	assert.Equal(t, []string{entry.ID}, deliveries.canceledIDs())

	assert.False(t, r.DrainNext(context.Background(), time.Now()))
	assert.Equal(t, 1, fires.count())
}

func TestDrainNextLeavesFutureEntries(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	r := NewReconciler(entries, deliveries, fires.onFire)

	reminder := model.Reminder{
		RemindInMinutes: 120,
		Repeat:          model.RepeatNone,
		SetAt:           time.Now().UTC(),
	}
	task := taskWithReminder("task-1", reminder)
	entry := model.NewScheduleEntry(task, reminder)
	require.NoError(t, entries.PutScheduleEntry(context.Background(), entry))

	assert.False(t, r.DrainNext(context.Background(), time.Now()))
	assert.True(t, entries.has(entry.ID))
	assert.Empty(t, deliveries.canceledIDs())
}

func TestDrainNextDrainsOldestFirst(t *testing.T) {
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	fires := newFireCollector(true)
	r := NewReconciler(entries, deliveries, fires.onFire)

	now := time.Now().UTC()
	older := model.Reminder{
		RemindInMinutes: 30, Repeat: model.RepeatNone, SetAt: now.Add(-3 * time.Hour),
	}
	newer := model.Reminder{
		RemindInMinutes: 30, Repeat: model.RepeatNone, SetAt: now.Add(-time.Hour),
	}
	require.NoError(t, entries.PutScheduleEntry(context.Background(),
		model.NewScheduleEntry(taskWithReminder("newer", newer), newer)))
	require.NoError(t, entries.PutScheduleEntry(context.Background(),
		model.NewScheduleEntry(taskWithReminder("older", older), older)))

	require.True(t, r.DrainNext(context.Background(), now))
	require.True(t, r.DrainNext(context.Background(), now))

	require.Equal(t, 2, fires.count())
	assert.Equal(t, "older", fires.fires[0].Task.ID)
	assert.Equal(t, "newer", fires.fires[1].Task.ID)
}
