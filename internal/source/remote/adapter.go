package remote

import (
	"context"
	"fmt"
	"time"

	"taskflow/internal/model"
)

// Adapter implements source.Source against the hosted dashboard backend.
type Adapter struct {
	client *Client
}

// NewAdapter creates a backend source adapter.
func NewAdapter(baseURL, token string) *Adapter {
	return &Adapter{client: NewClient(baseURL, token)}
}

// ValidateConnection verifies credentials by fetching the workspace info.
// Returns the workspace name on success.
func (a *Adapter) ValidateConnection(ctx context.Context) (string, error) {
	var ws workspaceInfo
	if err := a.client.Get(ctx, "/api/workspace", &ws); err != nil {
		return "", fmt.Errorf("validating backend connection: %w", err)
	}
	return ws.Name, nil
}

// FetchTasks retrieves the full current task list.
func (a *Adapter) FetchTasks(ctx context.Context) ([]model.Task, error) {
	var resp taskListResponse
	if err := a.client.Get(ctx, "/api/tasks", &resp); err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(resp.Tasks))
	for _, wt := range resp.Tasks {
		task, err := toTask(wt)
		if err != nil {
			return nil, fmt.Errorf("decoding task %s: %w", wt.ID, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// FetchCompanies retrieves all client companies.
func (a *Adapter) FetchCompanies(ctx context.Context) ([]model.Company, error) {
	var resp companyListResponse
	if err := a.client.Get(ctx, "/api/companies", &resp); err != nil {
		return nil, fmt.Errorf("fetching companies: %w", err)
	}

	companies := make([]model.Company, 0, len(resp.Companies))
	for _, wc := range resp.Companies {
		companies = append(companies, model.Company{
			ID:                   wc.ID,
			Name:                 wc.Name,
			ContactEmail:         wc.ContactEmail,
			LinkedInSubscription: wc.LinkedInSubscription,
			CreatedAt:            parseTime(wc.CreatedAt),
		})
	}
	return companies, nil
}

// UpdateTask writes a modified task back to the backend.
func (a *Adapter) UpdateTask(ctx context.Context, task model.Task) error {
	body := fromTask(task)
	if err := a.client.Patch(ctx, "/api/tasks/"+task.ID, body, nil); err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	return nil
}

// toTask converts a wire task to the domain model.
func toTask(wt wireTask) (model.Task, error) {
	task := model.Task{
		ID:          wt.ID,
		Title:       wt.Title,
		Description: wt.Description,
		Category:    wt.Category,
		Status:      model.TaskStatus(wt.Status),
		CompanyID:   wt.CompanyID,
		CompanyName: wt.CompanyName,
		AssignedTo:  wt.AssignedTo,
		Priority:    wt.Priority,
		StartDate:   parseTime(wt.StartDate),
		EndDate:     parseTime(wt.EndDate),
		CreatedAt:   parseTime(wt.CreatedAt),
		UpdatedAt:   parseTime(wt.UpdatedAt),
	}

	if wt.Reminder != nil {
		setAt, err := time.Parse(time.RFC3339, wt.Reminder.SetAt)
		if err != nil {
			return model.Task{}, fmt.Errorf("parsing reminder setAt: %w", err)
		}
		task.Reminder = &model.Reminder{
			RemindInMinutes: wt.Reminder.RemindInMinutes,
			Repeat:          model.RepeatInterval(wt.Reminder.Repeat),
			Sound:           wt.Reminder.Sound,
			SetAt:           setAt,
		}
	}

	return task, nil
}

// fromTask converts a domain task to its wire shape.
func fromTask(task model.Task) wireTask {
	wt := wireTask{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Status:      string(task.Status),
		CompanyID:   task.CompanyID,
		CompanyName: task.CompanyName,
		AssignedTo:  task.AssignedTo,
		Priority:    task.Priority,
		StartDate:   task.StartDate.UTC().Format(time.RFC3339),
		EndDate:     task.EndDate.UTC().Format(time.RFC3339),
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if task.Reminder != nil {
		wt.Reminder = &wireReminder{
			RemindInMinutes: task.Reminder.RemindInMinutes,
			Repeat:          string(task.Reminder.Repeat),
			Sound:           task.Reminder.Sound,
			SetAt:           task.Reminder.SetAt.UTC().Format(time.RFC3339),
		}
	}
	return wt
}

// parseTime parses an RFC 3339 timestamp, returning the zero time for
// missing or malformed values rather than failing the whole fetch.
func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
