package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func insertUser(t *testing.T, db *DB, id, tenantID string, role user.Role) {
	t.Helper()
	err := NewUserRepository(db).Create(context.Background(), &user.User{
		ID:           id,
		TenantID:     tenantID,
		Name:         "User " + id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
}

func insertProject(t *testing.T, db *DB, id, tenantID, ownerID string) {
	t.Helper()
	err := NewProjectRepository(db).Create(context.Background(), &project.Project{
		ID:        id,
		TenantID:  tenantID,
		Name:      "Project " + id,
		Type:      "Web",
		Status:    project.StatusInProgress,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func insertTask(t *testing.T, db *DB, id, tenantID, projectID string, assigneeID *string) {
	t.Helper()
	err := NewTaskRepository(db).Create(context.Background(), &task.Task{
		ID:         id,
		TenantID:   tenantID,
		ProjectID:  projectID,
		Name:       "Task " + id,
		Type:       "Development",
		Status:     task.StatusToDo,
		AssigneeID: assigneeID,
		CreatedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
}

// seedTenant creates an admin, a member, one project and one task assigned to the member.
func seedTenant(t *testing.T, db *DB, tenantID string) {
	t.Helper()
	insertUser(t, db, tenantID+"-admin", tenantID, user.RoleAdmin)
	insertUser(t, db, tenantID+"-member", tenantID, user.RoleMember)
	insertProject(t, db, tenantID+"-p1", tenantID, tenantID+"-admin")
	member := tenantID + "-member"
	insertTask(t, db, tenantID+"-t1", tenantID, tenantID+"-p1", &member)
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"users",
		"auth_sessions",
		"api_keys",
		"projects",
		"tasks",
		"work_logs",
		"active_sessions",
		"activity_log",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// Migrations are idempotent.
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

func TestWorkLogsTable_RejectsNonPositiveDuration(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	insert := `INSERT INTO work_logs (id, tenant_id, user_id, project_id, task_id, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.ExecContext(ctx, insert, "w1", "tenant1", "tenant1-member", "tenant1-p1", "tenant1-t1", start, start, start)
	require.Error(t, err, "equal start and end must be rejected")

	_, err = db.ExecContext(ctx, insert, "w2", "tenant1", "tenant1-member", "tenant1-p1", "tenant1-t1", start, start.Add(-time.Second), start)
	require.Error(t, err, "end before start must be rejected")

	_, err = db.ExecContext(ctx, insert, "w3", "tenant1", "tenant1-member", "tenant1-p1", "tenant1-t1", start, start.Add(time.Second), start)
	require.NoError(t, err)
}

func TestActiveSessionsTable_OnePerUser(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	seedTenant(t, db, "tenant1")
	insertTask(t, db, "t2", "tenant1", "tenant1-p1", nil)

	insert := `INSERT INTO active_sessions (tenant_id, user_id, task_id, project_id, state, started_at)
		VALUES (?, ?, ?, ?, 'running', ?)`
	now := time.Now().UTC()

	_, err := db.ExecContext(ctx, insert, "tenant1", "tenant1-member", "tenant1-t1", "tenant1-p1", now)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "tenant1", "tenant1-member", "t2", "tenant1-p1", now)
	require.Error(t, err, "second active session for the same user must be rejected")
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	sentinel := context.Canceled
	err := db.WithinTx(ctx, func(ctx context.Context, tx DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, tenant_id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"u1", "tenant1", "Ann", "ann@example.com", "hash", "admin", time.Now().UTC())
		require.NoError(t, err)
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count))
	require.Equal(t, 0, count)
}
