package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReminderValidate(t *testing.T) {
	setAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		reminder Reminder
		wantErr  error
	}{
		{
			name:     "valid offset",
			reminder: Reminder{RemindInMinutes: 30, Repeat: RepeatNone, SetAt: setAt},
		},
		{
			name:     "zero offset rejected",
			reminder: Reminder{RemindInMinutes: 0, Repeat: RepeatNone, SetAt: setAt},
			wantErr:  ErrInvalidReminder,
		},
		{
			name:     "negative offset rejected",
			reminder: Reminder{RemindInMinutes: -5, Repeat: RepeatNone, SetAt: setAt},
			wantErr:  ErrInvalidReminder,
		},
		{
			name:     "hourly repeat valid",
			reminder: Reminder{RemindInMinutes: 1, Repeat: RepeatHourly, SetAt: setAt},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reminder.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReminderValidateUnknownRepeat(t *testing.T) {
	r := Reminder{RemindInMinutes: 10, Repeat: RepeatInterval("weekly")}
	err := r.Validate()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidReminder)
}

func TestRepeatIntervalEvery(t *testing.T) {
	assert.Equal(t, time.Duration(0), RepeatNone.Every())
	assert.Equal(t, time.Hour, RepeatHourly.Every())
	assert.Equal(t, 24*time.Hour, RepeatDaily.Every())
}

func TestReminderFireTime(t *testing.T) {
	setAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := Reminder{RemindInMinutes: 90, Repeat: RepeatNone, SetAt: setAt}

	assert.Equal(t, setAt.Add(90*time.Minute), r.FireTime())
}

func TestScheduleID(t *testing.T) {
	setAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id := ScheduleID("task-1", setAt)
	assert.Equal(t, "task-1:2026-03-01T12:00:00Z", id)

	// The id is stable across invocations and timezone representations.
	inParis := setAt.In(time.FixedZone("CET", 3600))
	assert.Equal(t, id, ScheduleID("task-1", inParis))

	// Redefining the reminder (new SetAt) yields a distinct id.
	assert.NotEqual(t, id, ScheduleID("task-1", setAt.Add(time.Second)))
}

func TestNewScheduleEntry(t *testing.T) {
	setAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	task := Task{
		ID:          "task-1",
		Title:       "Follow up with Acme",
		CompanyName: "Acme Corp",
	}
	reminder := Reminder{RemindInMinutes: 15, Repeat: RepeatNone, SetAt: setAt}

	entry := NewScheduleEntry(task, reminder)

	assert.Equal(t, ScheduleID("task-1", setAt), entry.ID)
	assert.Equal(t, "Reminder: Follow up with Acme", entry.Title)
	assert.Equal(t, "Acme Corp", entry.Body)
	assert.Equal(t, reminder.FireTime().UnixMilli(), entry.FireAt)
	assert.True(t, entry.FireTime().Equal(reminder.FireTime()))
}

func TestNewScheduleEntryWithoutCompany(t *testing.T) {
	task := Task{ID: "task-2", Title: "Standalone"}
	reminder := Reminder{RemindInMinutes: 5, Repeat: RepeatNone, SetAt: time.Now().UTC()}

	entry := NewScheduleEntry(task, reminder)
	assert.Equal(t, "Task reminder", entry.Body)
}
