package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ganot/taskhours/internal/domain/worklog"
)

const workLogColumns = `id, tenant_id, user_id, project_id, task_id, start_time, end_time, note, created_at`

// WorkLogRepository implements worklog.Repository for SQLite
type WorkLogRepository struct {
	db DBTX
}

// NewWorkLogRepository creates a new WorkLogRepository
func NewWorkLogRepository(db *DB) *WorkLogRepository {
	return &WorkLogRepository{db: db}
}

// Create inserts a work log
func (r *WorkLogRepository) Create(ctx context.Context, w *worklog.WorkLog) error {
	return insertWorkLog(ctx, r.db, w)
}

// List returns work logs matching the options, newest first
func (r *WorkLogRepository) List(ctx context.Context, tenantID string, opts worklog.ListOptions) ([]worklog.WorkLog, error) {
	return listWorkLogs(ctx, r.db, tenantID, opts)
}

func insertWorkLog(ctx context.Context, q DBTX, w *worklog.WorkLog) error {
	query := `
		INSERT INTO work_logs (` + workLogColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		w.ID,
		w.TenantID,
		w.UserID,
		w.ProjectID,
		w.TaskID,
		w.StartTime.UTC(),
		w.EndTime.UTC(),
		nullString(w.Note),
		w.CreatedAt.UTC(),
	)
	if err != nil {
		return translateWriteError("create work log", err)
	}
	return nil
}

func listWorkLogs(ctx context.Context, q DBTX, tenantID string, opts worklog.ListOptions) ([]worklog.WorkLog, error) {
	query := `SELECT ` + workLogColumns + ` FROM work_logs WHERE tenant_id = ?`
	args := []any{tenantID}
	conditions := []string{}

	if opts.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *opts.UserID)
	}
	if opts.ProjectID != nil {
		conditions = append(conditions, "project_id = ?")
		args = append(args, *opts.ProjectID)
	}
	if opts.From != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, opts.From.UTC())
	}
	if opts.To != nil {
		conditions = append(conditions, "end_time <= ?")
		args = append(args, opts.To.UTC())
	}
	if len(conditions) > 0 {
		query += " AND " + joinConditions(conditions)
	}

	query += " ORDER BY start_time DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list work logs: %w", err)
	}
	defer rows.Close()

	logs := []worklog.WorkLog{}
	for rows.Next() {
		var w worklog.WorkLog
		var note sql.NullString
		if err := rows.Scan(
			&w.ID,
			&w.TenantID,
			&w.UserID,
			&w.ProjectID,
			&w.TaskID,
			&w.StartTime,
			&w.EndTime,
			&note,
			&w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan work log: %w", err)
		}
		w.Note = stringPtr(note)
		w.StartTime = w.StartTime.UTC()
		w.EndTime = w.EndTime.UTC()
		w.CreatedAt = w.CreatedAt.UTC()
		logs = append(logs, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work log rows: %w", err)
	}
	return logs, nil
}
