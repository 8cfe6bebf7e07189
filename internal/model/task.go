package model

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
	StatusUrgent     TaskStatus = "urgent"
)

// Task priority levels.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a client deliverable tracked on the dashboard. Tasks are owned by
// the remote backend; this struct is the local snapshot of one.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Description is the full body text.
	Description string `json:"description"`

	// Category is the deliverable kind (e.g., "linkedin-management",
	// "website", "presentation", or a custom value).
	Category string `json:"category"`

	// Status is the workflow state (use Status* constants).
	Status TaskStatus `json:"status"`

	// CompanyID references the client company this task belongs to.
	CompanyID string `json:"company_id"`

	// CompanyName is the denormalized company display name.
	CompanyName string `json:"company_name"`

	// AssignedTo lists the team member names working on the task.
	AssignedTo []string `json:"assigned_to"`

	// Priority is "low", "medium", or "high".
	Priority string `json:"priority"`

	// StartDate and EndDate bound the planned work window.
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`

	// Reminder is the active reminder for this task, if any. A task has at
	// most one; setting a new one replaces the old outright.
	Reminder *Reminder `json:"reminder,omitempty"`

	// CreatedAt is when the task was created in the backend.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified in the backend.
	UpdatedAt time.Time `json:"updated_at"`
}

// Completed reports whether the task has reached its terminal state.
// Completed tasks never qualify for reminder scheduling.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Company is a client company tracked on the dashboard.
type Company struct {
	// ID is the unique identifier for this company.
	ID string `json:"id"`

	// Name is the company display name.
	Name string `json:"name"`

	// ContactEmail is the address reminder emails are drafted for.
	// May be empty if no contact has been recorded.
	ContactEmail string `json:"contact_email"`

	// LinkedInSubscription indicates an active LinkedIn management plan.
	LinkedInSubscription bool `json:"linkedin_subscription"`

	// CreatedAt is when the company was added.
	CreatedAt time.Time `json:"created_at"`
}
