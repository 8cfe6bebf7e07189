package store

import (
	"context"
	"errors"
	"time"

	"taskflow/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// TaskFilter controls filtering and sorting for task queries.
type TaskFilter struct {
	Status    *model.TaskStatus
	CompanyID *string
	Query     *string // search title + description
	SortBy    string  // "end_date", "priority", "created_at", "updated_at", "title"
	SortDesc  bool
	Limit     int
	Offset    int
}

// ScheduleStore is the durable record of pending reminder deliveries. It is
// the only state shared between the foreground scheduler (writes/deletes) and
// the missed-reminder reconciler (consumes); each operation is a single
// atomic read-modify-write so callers need no additional locking.
type ScheduleStore interface {
	// PutScheduleEntry upserts an entry by id. Idempotent.
	PutScheduleEntry(ctx context.Context, entry model.ScheduleEntry) error

	// DeleteScheduleEntry removes an entry by id. Deleting an id that was
	// never stored, or deleting twice, is not an error.
	DeleteScheduleEntry(ctx context.Context, id string) error

	// ConsumeNextDueEntry atomically removes and returns one entry whose
	// fire time is at or before now, or nil if none qualifies. Safe to call
	// in a loop to drain due entries one at a time.
	ConsumeNextDueEntry(ctx context.Context, now time.Time) (*model.ScheduleEntry, error)
}

// Store defines the persistence interface for the local task/company cache
// and the reminder schedule backstop.
type Store interface {
	ScheduleStore

	UpsertTasks(ctx context.Context, tasks []model.Task) error
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)

	// SetTaskReminder replaces (or, with nil, clears) a task's reminder in
	// the local cache. Used by dismiss-forever alongside the backend update.
	SetTaskReminder(ctx context.Context, taskID string, reminder *model.Reminder) error

	UpsertCompanies(ctx context.Context, companies []model.Company) error
	GetCompanies(ctx context.Context) ([]model.Company, error)
}
