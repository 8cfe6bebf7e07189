package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"taskflow/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// UpsertTasks inserts or replaces a batch of tasks.
func (s *SQLiteStore) UpsertTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO tasks (
			id, title, description, category, status,
			company_id, company_name, assigned_to, priority,
			start_date, end_date, reminder,
			created_at, updated_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?,
			?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		assigned, err := json.Marshal(t.AssignedTo)
		if err != nil {
			return fmt.Errorf("marshaling assigned_to for task %s: %w", t.ID, err)
		}

		reminderJSON, err := marshalReminder(t.Reminder)
		if err != nil {
			return fmt.Errorf("marshaling reminder for task %s: %w", t.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			t.ID, t.Title, t.Description, t.Category, string(t.Status),
			t.CompanyID, t.CompanyName, string(assigned), t.Priority,
			t.StartDate.UTC(), t.EndDate.UTC(), reminderJSON,
			t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTasks retrieves tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	filter TaskFilter,
) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.CompanyID != nil {
		conditions = append(conditions, "company_id = ?")
		args = append(args, *filter.CompanyID)
	}
	if filter.Query != nil && *filter.Query != "" {
		conditions = append(conditions, "(title LIKE ? OR description LIKE ?)")
		q := "%" + *filter.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "updated_at"
	if filter.SortBy != "" {
		allowedSorts := map[string]bool{
			"title":      true,
			"priority":   true,
			"end_date":   true,
			"created_at": true,
			"updated_at": true,
		}
		if allowedSorts[filter.SortBy] {
			sortBy = filter.SortBy
		}
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(
	ctx context.Context,
	id string,
) (*model.Task, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("querying task %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("getting task %s: %w", id, err)
		}
		return nil, ErrNotFound
	}

	task, err := scanTask(rows)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}

	return &task, nil
}

// SetTaskReminder replaces or clears the reminder column of a task.
func (s *SQLiteStore) SetTaskReminder(
	ctx context.Context,
	taskID string,
	reminder *model.Reminder,
) error {
	reminderJSON, err := marshalReminder(reminder)
	if err != nil {
		return fmt.Errorf("marshaling reminder for task %s: %w", taskID, err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE tasks SET reminder = ?, updated_at = ? WHERE id = ?",
		reminderJSON, time.Now().UTC(), taskID,
	)
	if err != nil {
		return fmt.Errorf("setting reminder on task %s: %w", taskID, err)
	}
	return nil
}

// UpsertCompanies inserts or replaces a batch of companies.
func (s *SQLiteStore) UpsertCompanies(
	ctx context.Context,
	companies []model.Company,
) error {
	if len(companies) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO companies (
			id, name, contact_email, linkedin_subscription, created_at
		) VALUES (?, ?, ?, ?, ?)`

	for _, c := range companies {
		_, err := tx.ExecContext(ctx, query,
			c.ID, c.Name, c.ContactEmail,
			boolToInt(c.LinkedInSubscription), c.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting company %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// GetCompanies retrieves all companies ordered by name.
func (s *SQLiteStore) GetCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM companies ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying companies: %w", err)
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}

	return companies, rows.Err()
}

// schedulePayload is the JSON blob stored alongside a schedule entry so the
// full {task, reminder} pair can be re-presented after a restart.
type schedulePayload struct {
	Task     model.Task     `json:"task"`
	Reminder model.Reminder `json:"reminder"`
}

// PutScheduleEntry upserts a pending reminder delivery record.
func (s *SQLiteStore) PutScheduleEntry(
	ctx context.Context,
	entry model.ScheduleEntry,
) error {
	payload, err := json.Marshal(schedulePayload{
		Task:     entry.Task,
		Reminder: entry.Reminder,
	})
	if err != nil {
		return fmt.Errorf("marshaling schedule payload %s: %w", entry.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reminder_schedules (
			id, fire_at, title, body, payload, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.FireAt, entry.Title, entry.Body,
		string(payload), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("putting schedule entry %s: %w", entry.ID, err)
	}

	return nil
}

// DeleteScheduleEntry removes a schedule entry by id. Removing an id that
// does not exist is a no-op.
func (s *SQLiteStore) DeleteScheduleEntry(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM reminder_schedules WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("deleting schedule entry %s: %w", id, err)
	}
	return nil
}

// ConsumeNextDueEntry atomically removes and returns the earliest schedule
// entry whose fire time has passed, or nil if nothing is due. The select and
// delete share one transaction so concurrent drains never hand the same
// entry to two consumers.
func (s *SQLiteStore) ConsumeNextDueEntry(
	ctx context.Context,
	now time.Time,
) (*model.ScheduleEntry, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		entry   model.ScheduleEntry
		payload string
	)
	row := tx.QueryRowxContext(ctx, `
		SELECT id, fire_at, title, body, payload
		FROM reminder_schedules
		WHERE fire_at <= ?
		ORDER BY fire_at ASC
		LIMIT 1`,
		now.UnixMilli(),
	)
	err = row.Scan(&entry.ID, &entry.FireAt, &entry.Title, &entry.Body, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning due schedule entry: %w", err)
	}

	var p schedulePayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return nil, fmt.Errorf("unmarshaling schedule payload %s: %w", entry.ID, err)
	}
	entry.Task = p.Task
	entry.Reminder = p.Reminder

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM reminder_schedules WHERE id = ?", entry.ID,
	); err != nil {
		return nil, fmt.Errorf("consuming schedule entry %s: %w", entry.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing schedule consume: %w", err)
	}

	return &entry, nil
}

// scanTask scans a task row from a sqlx.Rows result set.
func scanTask(rows *sqlx.Rows) (model.Task, error) {
	var (
		task         model.Task
		status       string
		assignedTo   string
		reminderJSON string
		startDate    time.Time
		endDate      time.Time
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := rows.Scan(
		&task.ID, &task.Title, &task.Description, &task.Category, &status,
		&task.CompanyID, &task.CompanyName, &assignedTo, &task.Priority,
		&startDate, &endDate, &reminderJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return model.Task{}, fmt.Errorf("scanning task row: %w", err)
	}

	task.Status = model.TaskStatus(status)
	task.StartDate = startDate
	task.EndDate = endDate
	task.CreatedAt = createdAt
	task.UpdatedAt = updatedAt

	if assignedTo != "" {
		if err := json.Unmarshal([]byte(assignedTo), &task.AssignedTo); err != nil {
			return model.Task{}, fmt.Errorf("unmarshaling assigned_to: %w", err)
		}
	}

	reminder, err := unmarshalReminder(reminderJSON)
	if err != nil {
		return model.Task{}, err
	}
	task.Reminder = reminder

	return task, nil
}

// scanCompany scans a company row from a sqlx.Rows result set.
func scanCompany(rows *sqlx.Rows) (model.Company, error) {
	var (
		c         model.Company
		linkedIn  int
		createdAt time.Time
	)

	err := rows.Scan(&c.ID, &c.Name, &c.ContactEmail, &linkedIn, &createdAt)
	if err != nil {
		return model.Company{}, fmt.Errorf("scanning company row: %w", err)
	}

	c.LinkedInSubscription = linkedIn != 0
	c.CreatedAt = createdAt

	return c, nil
}

// marshalReminder serializes a reminder to JSON, with the empty string
// standing for "no reminder set".
func marshalReminder(r *model.Reminder) (string, error) {
	if r == nil {
		return "", nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalReminder is the inverse of marshalReminder.
func unmarshalReminder(raw string) (*model.Reminder, error) {
	if raw == "" {
		return nil, nil
	}
	var r model.Reminder
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, fmt.Errorf("unmarshaling reminder: %w", err)
	}
	return &r, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
