package sqlite

import (
	"context"

	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/worklog"
)

// ReportRepository implements report.Snapshotter for SQLite
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Snapshot reads users, projects, tasks and work logs inside one transaction
// so a report never mixes rows from before and after a concurrent write.
func (r *ReportRepository) Snapshot(ctx context.Context, tenantID string, opts report.SnapshotOptions) (*report.Snapshot, error) {
	snap := &report.Snapshot{}
	err := r.db.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		var err error
		if snap.Users, err = listUsers(ctx, tx, tenantID); err != nil {
			return err
		}
		if snap.Projects, err = listProjects(ctx, tx, tenantID); err != nil {
			return err
		}
		if snap.Tasks, err = listTasks(ctx, tx, tenantID); err != nil {
			return err
		}
		if opts.SkipWorkLogs {
			return nil
		}
		snap.WorkLogs, err = listWorkLogs(ctx, tx, tenantID, worklog.ListOptions{From: opts.From, To: opts.To})
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
