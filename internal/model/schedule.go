package model

import "time"

// ScheduleEntry is the durable record of one pending reminder delivery. It is
// written to the schedule store and mirrored to the background delivery agent
// when a reminder is armed, and consumed during reconciliation after it fires.
type ScheduleEntry struct {
	// ID is derived from the task id and the reminder's SetAt; see ScheduleID.
	ID string `json:"id"`

	// FireAt is the absolute delivery time in Unix milliseconds.
	FireAt int64 `json:"fire_at"`

	// Title and Body are display text snapshotted at schedule time so
	// delivery never needs to re-fetch task state.
	Title string `json:"title"`
	Body  string `json:"body"`

	// Task and Reminder are the full pair snapshotted for re-presentation
	// after the page that armed the schedule is gone.
	Task     Task     `json:"task"`
	Reminder Reminder `json:"reminder"`
}

// NewScheduleEntry builds the durable entry for a task's active reminder.
// The caller must have validated the reminder first.
func NewScheduleEntry(task Task, reminder Reminder) ScheduleEntry {
	body := "Task reminder"
	if task.CompanyName != "" {
		body = task.CompanyName
	}
	return ScheduleEntry{
		ID:       ScheduleID(task.ID, reminder.SetAt),
		FireAt:   reminder.FireTime().UnixMilli(),
		Title:    "Reminder: " + task.Title,
		Body:     body,
		Task:     task,
		Reminder: reminder,
	}
}

// FireTime returns FireAt as a time.Time.
func (e ScheduleEntry) FireTime() time.Time {
	return time.UnixMilli(e.FireAt)
}
