package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/repository"
)

const taskColumns = `id, tenant_id, project_id, name, type, status, assignee_id, estimate_hours, created_at`

// TaskRepository implements task.Repository for SQLite
type TaskRepository struct {
	db DBTX
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create creates a new task
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.TenantID,
		t.ProjectID,
		t.Name,
		t.Type,
		t.Status,
		nullString(t.AssigneeID),
		nullFloat(t.EstimateHours),
		t.CreatedAt.UTC(),
	)
	if err != nil {
		return translateWriteError("create task", err)
	}
	return nil
}

// Get retrieves a task by ID
func (r *TaskRepository) Get(ctx context.Context, tenantID, id string) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND tenant_id = ?`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// Update overwrites the mutable fields of a task
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks
		SET name = ?, type = ?, status = ?, assignee_id = ?, estimate_hours = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		t.Name,
		t.Type,
		t.Status,
		nullString(t.AssigneeID),
		nullFloat(t.EstimateHours),
		t.ID,
		t.TenantID,
	)
	if err != nil {
		return translateWriteError("update task", err)
	}
	return requireAffected(result)
}

// Delete removes a task. Tasks with work logs fail with a foreign key violation.
func (r *TaskRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND tenant_id = ?`, id, tenantID)
	if err != nil {
		return translateWriteError("delete task", err)
	}
	return requireAffected(result)
}

// ListByProject returns the tasks of a project in creation order
func (r *TaskRepository) ListByProject(ctx context.Context, tenantID, projectID string) ([]task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = ? AND project_id = ?
		ORDER BY created_at ASC
	`
	return queryTasks(ctx, r.db, query, tenantID, projectID)
}

// ListByAssignee returns the tasks assigned to a user in creation order
func (r *TaskRepository) ListByAssignee(ctx context.Context, tenantID, userID string) ([]task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE tenant_id = ? AND assignee_id = ?
		ORDER BY created_at ASC
	`
	return queryTasks(ctx, r.db, query, tenantID, userID)
}

func listTasks(ctx context.Context, q DBTX, tenantID string) ([]task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE tenant_id = ? ORDER BY created_at ASC`
	return queryTasks(ctx, q, query, tenantID)
}

func queryTasks(ctx context.Context, q DBTX, query string, args ...any) ([]task.Task, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var assignee sql.NullString
	var estimate sql.NullFloat64
	if err := row.Scan(
		&t.ID,
		&t.TenantID,
		&t.ProjectID,
		&t.Name,
		&t.Type,
		&t.Status,
		&assignee,
		&estimate,
		&t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.AssigneeID = stringPtr(assignee)
	t.EstimateHours = floatPtr(estimate)
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
