package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/ganot/taskhours/internal/repository"
)

const activeSessionColumns = `tenant_id, user_id, task_id, project_id, state, started_at, paused_at, resumed_at`

// TimerRepository implements timer.Repository for SQLite
type TimerRepository struct {
	db *DB
}

// NewTimerRepository creates a new TimerRepository
func NewTimerRepository(db *DB) *TimerRepository {
	return &TimerRepository{db: db}
}

// Get retrieves the active session of a user
func (r *TimerRepository) Get(ctx context.Context, tenantID, userID string) (*timer.Session, error) {
	query := `SELECT ` + activeSessionColumns + ` FROM active_sessions WHERE tenant_id = ? AND user_id = ?`

	sess, err := scanActiveSession(r.db.QueryRowContext(ctx, query, tenantID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return sess, nil
}

// Create claims the user's single active session slot
func (r *TimerRepository) Create(ctx context.Context, sess *timer.Session) error {
	query := `
		INSERT INTO active_sessions (` + activeSessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		sess.TenantID,
		sess.UserID,
		sess.TaskID,
		sess.ProjectID,
		sess.State,
		sess.StartedAt.UTC(),
		nullTime(sess.PausedAt),
		nullTime(sess.ResumedAt),
	)
	if err != nil {
		return translateWriteError("create active session", err)
	}
	return nil
}

// Update stores a state change of the user's session on the same task
func (r *TimerRepository) Update(ctx context.Context, sess *timer.Session) error {
	query := `
		UPDATE active_sessions
		SET state = ?, paused_at = ?, resumed_at = ?
		WHERE tenant_id = ? AND user_id = ? AND task_id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		sess.State,
		nullTime(sess.PausedAt),
		nullTime(sess.ResumedAt),
		sess.TenantID,
		sess.UserID,
		sess.TaskID,
	)
	if err != nil {
		return translateWriteError("update active session", err)
	}
	return requireAffected(result)
}

// Delete releases the user's session slot
func (r *TimerRepository) Delete(ctx context.Context, tenantID, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM active_sessions WHERE tenant_id = ? AND user_id = ?`, tenantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete active session: %w", err)
	}
	return requireAffected(result)
}

// CommitStop records the work log and releases the session in one transaction.
// On any error nothing is written and the session stays active.
func (r *TimerRepository) CommitStop(ctx context.Context, sess *timer.Session, log *worklog.WorkLog) error {
	return r.db.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		if err := insertWorkLog(ctx, tx, log); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`DELETE FROM active_sessions WHERE tenant_id = ? AND user_id = ? AND task_id = ?`,
			sess.TenantID, sess.UserID, sess.TaskID)
		if err != nil {
			return fmt.Errorf("failed to delete active session: %w", err)
		}
		return requireAffected(result)
	})
}

// ListRunningBefore returns running sessions of every tenant that last started
// or resumed before cutoff
func (r *TimerRepository) ListRunningBefore(ctx context.Context, cutoff time.Time) ([]timer.Session, error) {
	query := `
		SELECT ` + activeSessionColumns + `
		FROM active_sessions
		WHERE state = 'running' AND COALESCE(resumed_at, started_at) < ?
		ORDER BY COALESCE(resumed_at, started_at) ASC
	`
	rows, err := r.db.QueryContext(ctx, query, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list running sessions: %w", err)
	}
	defer rows.Close()

	sessions := []timer.Session{}
	for rows.Next() {
		sess, err := scanActiveSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active session rows: %w", err)
	}
	return sessions, nil
}

func scanActiveSession(row rowScanner) (*timer.Session, error) {
	var sess timer.Session
	var pausedAt, resumedAt sql.NullTime
	if err := row.Scan(
		&sess.TenantID,
		&sess.UserID,
		&sess.TaskID,
		&sess.ProjectID,
		&sess.State,
		&sess.StartedAt,
		&pausedAt,
		&resumedAt,
	); err != nil {
		return nil, err
	}
	sess.StartedAt = sess.StartedAt.UTC()
	sess.PausedAt = timePtr(pausedAt)
	sess.ResumedAt = timePtr(resumedAt)
	return &sess, nil
}
