package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/ganot/taskhours/internal/repository"
	"github.com/stretchr/testify/require"
)

func newRunningSession(tenantID string, startedAt time.Time) *timer.Session {
	return &timer.Session{
		TenantID:  tenantID,
		UserID:    tenantID + "-member",
		TaskID:    tenantID + "-t1",
		ProjectID: tenantID + "-p1",
		State:     timer.StateRunning,
		StartedAt: startedAt,
	}
}

func TestTimerRepository_CreateGetUpdate(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTimerRepository(db)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")

	started := time.Now().UTC().Add(-10 * time.Minute)
	sess := newRunningSession("tenant1", started)
	require.NoError(t, repo.Create(ctx, sess))
	require.ErrorIs(t, repo.Create(ctx, sess), repository.ErrConflict)

	got, err := repo.Get(ctx, "tenant1", "tenant1-member")
	require.NoError(t, err)
	require.Equal(t, timer.StateRunning, got.State)
	require.Nil(t, got.PausedAt)
	require.True(t, started.Equal(got.StartedAt))

	pausedAt := time.Now().UTC()
	got.State = timer.StatePaused
	got.PausedAt = &pausedAt
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, "tenant1", "tenant1-member")
	require.NoError(t, err)
	require.Equal(t, timer.StatePaused, got.State)
	require.NotNil(t, got.PausedAt)

	require.NoError(t, repo.Delete(ctx, "tenant1", "tenant1-member"))
	_, err = repo.Get(ctx, "tenant1", "tenant1-member")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTimerRepository_CommitStop(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTimerRepository(db)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")

	started := time.Now().UTC().Add(-time.Hour)
	sess := newRunningSession("tenant1", started)
	require.NoError(t, repo.Create(ctx, sess))

	log := &worklog.WorkLog{
		ID: "w1", TenantID: "tenant1", UserID: sess.UserID, ProjectID: sess.ProjectID, TaskID: sess.TaskID,
		StartTime: started, EndTime: started.Add(time.Hour), CreatedAt: started.Add(time.Hour),
	}
	require.NoError(t, repo.CommitStop(ctx, sess, log))

	_, err := repo.Get(ctx, "tenant1", sess.UserID)
	require.ErrorIs(t, err, repository.ErrNotFound)

	logs, err := NewWorkLogRepository(db).List(ctx, "tenant1", worklog.ListOptions{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestTimerRepository_CommitStopFailureKeepsSession(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTimerRepository(db)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")

	started := time.Now().UTC()
	sess := newRunningSession("tenant1", started)
	require.NoError(t, repo.Create(ctx, sess))

	// end == start violates the work_logs CHECK constraint.
	log := &worklog.WorkLog{
		ID: "w1", TenantID: "tenant1", UserID: sess.UserID, ProjectID: sess.ProjectID, TaskID: sess.TaskID,
		StartTime: started, EndTime: started, CreatedAt: started,
	}
	require.ErrorIs(t, repo.CommitStop(ctx, sess, log), repository.ErrCheckViolation)

	got, err := repo.Get(ctx, "tenant1", sess.UserID)
	require.NoError(t, err)
	require.Equal(t, sess.TaskID, got.TaskID)

	logs, err := NewWorkLogRepository(db).List(ctx, "tenant1", worklog.ListOptions{})
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestTimerRepository_ListRunningBefore(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTimerRepository(db)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")
	seedTenant(t, db, "tenant2")

	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newRunningSession("tenant1", now.Add(-10*time.Hour))))
	require.NoError(t, repo.Create(ctx, newRunningSession("tenant2", now.Add(-time.Minute))))

	stale, err := repo.ListRunningBefore(ctx, now.Add(-8*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Equal(t, "tenant1", stale[0].TenantID)
}

func TestTimerRepository_ResumedSessionIsNotStale(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTimerRepository(db)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")

	now := time.Now().UTC()
	sess := newRunningSession("tenant1", now.Add(-10*time.Hour))
	require.NoError(t, repo.Create(ctx, sess))

	resumedAt := now.Add(-time.Minute)
	sess.ResumedAt = &resumedAt
	require.NoError(t, repo.Update(ctx, sess))

	got, err := repo.Get(ctx, "tenant1", sess.UserID)
	require.NoError(t, err)
	require.NotNil(t, got.ResumedAt)
	require.True(t, resumedAt.Equal(*got.ResumedAt))

	stale, err := repo.ListRunningBefore(ctx, now.Add(-8*time.Hour))
	require.NoError(t, err)
	require.Empty(t, stale)

	stale, err = repo.ListRunningBefore(ctx, now)
	require.NoError(t, err)
	require.Len(t, stale, 1)
}

func TestTimerRepository_TaskDeletionKeepsSession(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTimerRepository(db)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")

	require.NoError(t, repo.Create(ctx, newRunningSession("tenant1", time.Now().UTC())))
	err := NewTaskRepository(db).Delete(ctx, "tenant1", "tenant1-t1")
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)

	got, err := repo.Get(ctx, "tenant1", "tenant1-member")
	require.NoError(t, err)
	require.Equal(t, "tenant1-t1", got.TaskID)
}
