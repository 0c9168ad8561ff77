package timer

import (
	"context"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/worklog"
)

// Repository persists active sessions.
type Repository interface {
	Get(ctx context.Context, tenantID, userID string) (*Session, error)
	// Create fails with repository.ErrConflict when the user already owns a session.
	Create(ctx context.Context, sess *Session) error
	// Update changes state and paused_at of the session identified by
	// tenant, user, task and start time.
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, tenantID, userID string) error
	// CommitStop inserts the work log and removes the session atomically.
	CommitStop(ctx context.Context, sess *Session, log *worklog.WorkLog) error
	// ListRunningBefore returns running sessions of every tenant whose last start
	// or resume is before cutoff.
	ListRunningBefore(ctx context.Context, cutoff time.Time) ([]Session, error)
}

// TaskReader loads the task a session is tracked against.
type TaskReader interface {
	Get(ctx context.Context, tenantID, id string) (*task.Task, error)
}

// ActivityRepository records timer history.
type ActivityRepository = activity.Repository
