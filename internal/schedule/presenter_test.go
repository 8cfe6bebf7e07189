package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/model"
)

func newTestPresenter(
	snooze time.Duration,
	sound bool,
) (*Presenter, *fakeNotifier, *fakeClearer, *memScheduleStore, *fakeAgent) {
	notifier := &fakeNotifier{}
	clearer := &fakeClearer{}
	entries := newMemScheduleStore()
	deliveries := &fakeAgent{}
	p := NewPresenter(notifier, clearer, entries, deliveries, snooze, sound)
	return p, notifier, clearer, entries, deliveries
}

func presentationFor(taskID string) Presentation {
	reminder := model.Reminder{
		RemindInMinutes: 30,
		Repeat:          model.RepeatNone,
		Sound:           true,
		SetAt:           time.Now().UTC().Add(-time.Hour),
	}
	return Presentation{
		Task:     taskWithReminder(taskID, reminder),
		Reminder: reminder,
	}
}

func TestOfferShowsWhenIdle(t *testing.T) {
	p, notifier, _, _, _ := newTestPresenter(time.Minute, true)

	pres := presentationFor("task-1")
	require.True(t, p.Offer(pres))

	current := p.Current()
	require.NotNil(t, current)
	assert.Equal(t, "task-1", current.Task.ID)

	notes := notifier.notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "Reminder: Call task-1|Acme Corp", notes[0])
	assert.Equal(t, 1, notifier.chimeCount())

	select {
	case shown := <-p.Shown():
		assert.Equal(t, "task-1", shown.Task.ID)
	default:
		t.Fatal("expected a shown signal")
	}
}

func TestOfferDropsWhileShowing(t *testing.T) {
	p, notifier, _, _, _ := newTestPresenter(time.Minute, true)

	require.True(t, p.Offer(presentationFor("task-1")))
	assert.False(t, p.Offer(presentationFor("task-2")))

	// The losing reminder produced no notification either.
	assert.Len(t, notifier.notifications(), 1)

	current := p.Current()
	require.NotNil(t, current)
	assert.Equal(t, "task-1", current.Task.ID)
}

func TestChimeSuppressedByGlobalSetting(t *testing.T) {
	p, notifier, _, _, _ := newTestPresenter(time.Minute, false)

	require.True(t, p.Offer(presentationFor("task-1")))
	assert.Zero(t, notifier.chimeCount())
}

func TestChimeSuppressedByReminderSetting(t *testing.T) {
	p, notifier, _, _, _ := newTestPresenter(time.Minute, true)

	pres := presentationFor("task-1")
	pres.Reminder.Sound = false
	require.True(t, p.Offer(pres))
	assert.Zero(t, notifier.chimeCount())
}

func TestNotifyLaterRepresentsAfterSnooze(t *testing.T) {
	p, notifier, _, _, _ := newTestPresenter(30*time.Millisecond, true)

	require.True(t, p.Offer(presentationFor("task-1")))
	<-p.Shown()

	p.NotifyLater()
	assert.Nil(t, p.Current())

	select {
	case <-p.Idle():
	default:
		t.Fatal("expected an idle signal")
	}

	// The same pair comes back through Offer after the snooze delay.
	select {
	case shown := <-p.Shown():
		assert.Equal(t, "task-1", shown.Task.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snoozed re-presentation")
	}
	assert.Len(t, notifier.notifications(), 2)
}

func TestNotifyLaterWhenIdleIsNoOp(t *testing.T) {
	p, _, _, _, _ := newTestPresenter(time.Minute, true)

	p.NotifyLater()
	assert.Nil(t, p.Current())

	select {
	case <-p.Idle():
		t.Fatal("unexpected idle signal")
	default:
	}
}

func TestDismissForeverCancelsEverywhere(t *testing.T) {
	p, _, clearer, entries, deliveries := newTestPresenter(time.Minute, true)

	pres := presentationFor("task-1")
	id := model.ScheduleID(pres.Task.ID, pres.Reminder.SetAt)
	entry := model.NewScheduleEntry(pres.Task, pres.Reminder)
	require.NoError(t, entries.PutScheduleEntry(context.Background(), entry))

	require.True(t, p.Offer(pres))
	require.NoError(t, p.DismissForever(context.Background()))

	assert.Nil(t, p.Current())
	assert.False(t, entries.has(id))
	assert.Contains(t, deliveries.canceledIDs(), id)
	assert.Equal(t, []string{"task-1"}, clearer.clearedIDs())

	select {
	case <-p.Idle():
	default:
		t.Fatal("expected an idle signal")
	}
}

func TestDismissForeverSurfacesClearerError(t *testing.T) {
	p, _, clearer, _, _ := newTestPresenter(time.Minute, true)
	clearer.err = errors.New("backend down")

	require.True(t, p.Offer(presentationFor("task-1")))

	err := p.DismissForever(context.Background())
	require.Error(t, err)

	// The presentation is resolved regardless.
	assert.Nil(t, p.Current())
}

func TestDismissForeverWhenIdleIsNoOp(t *testing.T) {
	p, _, clearer, _, deliveries := newTestPresenter(time.Minute, true)

	require.NoError(t, p.DismissForever(context.Background()))
	assert.Empty(t, clearer.clearedIDs())
	assert.Empty(t, deliveries.canceledIDs())
}
