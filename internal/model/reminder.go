package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidReminder is returned when a reminder's offset is not positive.
var ErrInvalidReminder = errors.New("model: reminder offset must be positive")

// RepeatInterval controls whether a reminder recurs after its first fire.
type RepeatInterval string

const (
	RepeatNone   RepeatInterval = "none"
	RepeatHourly RepeatInterval = "hour"
	RepeatDaily  RepeatInterval = "day"
)

// IsValid reports whether r is a known repeat interval.
func (r RepeatInterval) IsValid() bool {
	switch r {
	case RepeatNone, RepeatHourly, RepeatDaily:
		return true
	default:
		return false
	}
}

// Every returns the recurrence period, or zero for RepeatNone.
func (r RepeatInterval) Every() time.Duration {
	switch r {
	case RepeatHourly:
		return time.Hour
	case RepeatDaily:
		return 24 * time.Hour
	default:
		return 0
	}
}

// Reminder is the notification configuration attached to a task. The fire
// time is SetAt plus the offset; there is no standalone reminder aggregate.
type Reminder struct {
	// RemindInMinutes is the offset from SetAt, in minutes. Must be positive.
	RemindInMinutes int `json:"remind_in_minutes"`

	// Repeat controls recurrence after the first fire.
	Repeat RepeatInterval `json:"repeat"`

	// Sound indicates whether delivery should play an audible cue.
	Sound bool `json:"sound"`

	// SetAt is when the reminder was configured.
	SetAt time.Time `json:"set_at"`
}

// Validate rejects reminders that must never reach the scheduler.
func (r Reminder) Validate() error {
	if r.RemindInMinutes <= 0 {
		return ErrInvalidReminder
	}
	if !r.Repeat.IsValid() {
		return fmt.Errorf("model: unknown repeat interval %q", r.Repeat)
	}
	return nil
}

// FireTime resolves the relative reminder into an absolute first fire time.
func (r Reminder) FireTime() time.Time {
	return r.SetAt.Add(time.Duration(r.RemindInMinutes) * time.Minute)
}

// ScheduleID derives the stable schedule identifier for a reminder on a task.
// Redefining a reminder changes SetAt and therefore yields a distinct id, so
// a superseded schedule can never collide with its replacement. The id is
// reproducible, which makes cancellation idempotent.
func ScheduleID(taskID string, setAt time.Time) string {
	return taskID + ":" + setAt.UTC().Format(time.RFC3339)
}
