package report

import (
	"context"
	"time"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
)

// Snapshot is a consistent read of the tenant's reporting data.
type Snapshot struct {
	Users    []user.User
	Projects []project.Project
	Tasks    []task.Task
	WorkLogs []worklog.WorkLog
}

// SnapshotOptions narrows the work logs loaded into a snapshot.
type SnapshotOptions struct {
	From *time.Time
	To   *time.Time
	// SkipWorkLogs leaves Snapshot.WorkLogs empty.
	SkipWorkLogs bool
}

// Snapshotter reads every entity a report needs inside one transaction.
type Snapshotter interface {
	Snapshot(ctx context.Context, tenantID string, opts SnapshotOptions) (*Snapshot, error)
}
