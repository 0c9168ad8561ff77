package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/repository"
)

const projectColumns = `id, tenant_id, name, type, status, owner_id, deadline, created_at`

// ProjectRepository implements project.Repository for SQLite
type ProjectRepository struct {
	db DBTX
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		proj.ID,
		proj.TenantID,
		proj.Name,
		proj.Type,
		proj.Status,
		proj.OwnerID,
		formatDeadline(proj.Deadline),
		proj.CreatedAt.UTC(),
	)
	if err != nil {
		return translateWriteError("create project", err)
	}
	return nil
}

// Get retrieves a project by ID
func (r *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND tenant_id = ?`

	proj, err := scanProject(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return proj, nil
}

// Update overwrites the mutable fields of a project
func (r *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	query := `
		UPDATE projects
		SET name = ?, type = ?, status = ?, deadline = ?
		WHERE id = ? AND tenant_id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		proj.Name,
		proj.Type,
		proj.Status,
		formatDeadline(proj.Deadline),
		proj.ID,
		proj.TenantID,
	)
	if err != nil {
		return translateWriteError("update project", err)
	}
	return requireAffected(result)
}

// ListByOwner returns the projects owned by an admin, newest first
func (r *ProjectRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]project.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE tenant_id = ? AND owner_id = ?
		ORDER BY created_at DESC
	`
	return queryProjects(ctx, r.db, query, tenantID, ownerID)
}

// ListForAssignee returns the projects holding at least one task assigned to userID
func (r *ProjectRepository) ListForAssignee(ctx context.Context, tenantID, userID string) ([]project.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		WHERE p.tenant_id = ?
		  AND EXISTS (
			SELECT 1 FROM tasks t
			WHERE t.project_id = p.id AND t.tenant_id = p.tenant_id AND t.assignee_id = ?
		  )
		ORDER BY p.created_at DESC
	`
	return queryProjects(ctx, r.db, query, tenantID, userID)
}

func listProjects(ctx context.Context, q DBTX, tenantID string) ([]project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE tenant_id = ? ORDER BY created_at DESC`
	return queryProjects(ctx, q, query, tenantID)
}

func queryProjects(ctx context.Context, q DBTX, query string, args ...any) ([]project.Project, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *proj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

func scanProject(row rowScanner) (*project.Project, error) {
	var proj project.Project
	var deadline sql.NullString
	if err := row.Scan(
		&proj.ID,
		&proj.TenantID,
		&proj.Name,
		&proj.Type,
		&proj.Status,
		&proj.OwnerID,
		&deadline,
		&proj.CreatedAt,
	); err != nil {
		return nil, err
	}
	if deadline.Valid && deadline.String != "" {
		d, err := time.Parse(project.DeadlineLayout, deadline.String)
		if err != nil {
			return nil, fmt.Errorf("parsing deadline %q: %w", deadline.String, err)
		}
		proj.Deadline = &d
	}
	proj.CreatedAt = proj.CreatedAt.UTC()
	return &proj, nil
}

func formatDeadline(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(project.DeadlineLayout), Valid: true}
}
