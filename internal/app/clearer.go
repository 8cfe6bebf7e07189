package app

import (
	"context"
	"fmt"
	"log/slog"

	"taskflow/internal/source"
	"taskflow/internal/store"
)

// TaskReminderClearer removes a task's reminder in the backend and the
// local cache. It backs the popup's "don't show again" action.
type TaskReminderClearer struct {
	store store.Store
	src   source.Source
}

// NewTaskReminderClearer creates a TaskReminderClearer.
func NewTaskReminderClearer(s store.Store, src source.Source) *TaskReminderClearer {
	return &TaskReminderClearer{store: s, src: src}
}

// ClearTaskReminder clears the reminder field on the task. The backend
// update is best effort; the local cache is the source of truth for
// scheduling, so a failure there is the one that matters.
func (c *TaskReminderClearer) ClearTaskReminder(ctx context.Context, taskID string) error {
	task, err := c.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("loading task %s: %w", taskID, err)
	}
	task.Reminder = nil

	if err := c.src.UpdateTask(ctx, *task); err != nil {
		slog.Warn("clearing reminder in backend", "task", taskID, "error", err)
	}

	if err := c.store.SetTaskReminder(ctx, taskID, nil); err != nil {
		return fmt.Errorf("clearing reminder for task %s: %w", taskID, err)
	}
	return nil
}
