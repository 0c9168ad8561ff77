package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/stretchr/testify/require"
)

func TestReportRepository_Snapshot(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")
	seedTenant(t, db, "tenant2")

	logs := NewWorkLogRepository(db)
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 72 * time.Hour} {
		start := base.Add(offset)
		require.NoError(t, logs.Create(ctx, &worklog.WorkLog{
			ID:        []string{"w1", "w2"}[i],
			TenantID:  "tenant1",
			UserID:    "tenant1-member",
			ProjectID: "tenant1-p1",
			TaskID:    "tenant1-t1",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			CreatedAt: start,
		}))
	}

	repo := NewReportRepository(db)
	snap, err := repo.Snapshot(ctx, "tenant1", report.SnapshotOptions{})
	require.NoError(t, err)
	require.Len(t, snap.Users, 2)
	require.Len(t, snap.Projects, 1)
	require.Len(t, snap.Tasks, 1)
	require.Len(t, snap.WorkLogs, 2)

	from := base.Add(-time.Hour)
	to := base.Add(24 * time.Hour)
	snap, err = repo.Snapshot(ctx, "tenant1", report.SnapshotOptions{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, snap.WorkLogs, 1)
	require.Equal(t, "w1", snap.WorkLogs[0].ID)

	snap, err = repo.Snapshot(ctx, "tenant1", report.SnapshotOptions{SkipWorkLogs: true})
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	require.Empty(t, snap.WorkLogs)
}
