package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/repository"
)

const userColumns = `id, tenant_id, name, email, password_hash, role, rank, specialization, created_at`

// UserRepository implements user.Repository for SQLite
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.TenantID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		nullString(u.Rank),
		nullString(u.Specialization),
		u.CreatedAt.UTC(),
	)
	if err != nil {
		return translateWriteError("create user", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, tenantID, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? AND tenant_id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email within a tenant
func (r *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? AND tenant_id = ?`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// List returns every user of a tenant ordered by name
func (r *UserRepository) List(ctx context.Context, tenantID string) ([]user.User, error) {
	return listUsers(ctx, r.db, tenantID)
}

// ListTenants returns every tenant slug that has at least one user
func (r *UserRepository) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT tenant_id FROM users ORDER BY tenant_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []string{}
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, tenantID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}
	return tenants, nil
}

// CountByTenant returns the number of users in a tenant
func (r *UserRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = ?`, tenantID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func listUsers(ctx context.Context, q DBTX, tenantID string) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = ? ORDER BY name ASC`
	rows, err := q.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	var rank, specialization sql.NullString
	if err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&rank,
		&specialization,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	u.Rank = stringPtr(rank)
	u.Specialization = stringPtr(specialization)
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
