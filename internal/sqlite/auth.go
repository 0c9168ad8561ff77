package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/repository"
)

// AuthSessionRepository implements user.SessionRepository for SQLite
type AuthSessionRepository struct {
	db DBTX
}

// NewAuthSessionRepository creates a new AuthSessionRepository
func NewAuthSessionRepository(db *DB) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

// Create stores a login session
func (r *AuthSessionRepository) Create(ctx context.Context, sess *user.Session) error {
	query := `
		INSERT INTO auth_sessions (token_hash, tenant_id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		sess.TokenHash,
		sess.TenantID,
		sess.UserID,
		sess.CreatedAt.UTC(),
		sess.ExpiresAt.UTC(),
	)
	if err != nil {
		return translateWriteError("create auth session", err)
	}
	return nil
}

// Get retrieves a login session by token hash
func (r *AuthSessionRepository) Get(ctx context.Context, tokenHash string) (*user.Session, error) {
	query := `
		SELECT token_hash, tenant_id, user_id, created_at, expires_at
		FROM auth_sessions
		WHERE token_hash = ?
	`
	var sess user.Session
	err := r.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&sess.TokenHash,
		&sess.TenantID,
		&sess.UserID,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get auth session: %w", err)
	}
	return &sess, nil
}

// Delete removes a login session
func (r *AuthSessionRepository) Delete(ctx context.Context, tokenHash string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete auth session: %w", err)
	}
	return requireAffected(result)
}

// DeleteExpired removes sessions that expired at or before now
func (r *AuthSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// APIKeyRepository implements user.APIKeyRepository for SQLite
type APIKeyRepository struct {
	db DBTX
}

// NewAPIKeyRepository creates a new APIKeyRepository
func NewAPIKeyRepository(db *DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores an API key hash
func (r *APIKeyRepository) Create(ctx context.Context, key *user.APIKey) error {
	query := `
		INSERT INTO api_keys (key_hash, tenant_id, user_id, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		key.KeyHash,
		key.TenantID,
		key.UserID,
		key.Description,
		key.CreatedAt.UTC(),
	)
	if err != nil {
		return translateWriteError("create api key", err)
	}
	return nil
}

// Get retrieves an API key by hash
func (r *APIKeyRepository) Get(ctx context.Context, keyHash string) (*user.APIKey, error) {
	query := `
		SELECT key_hash, tenant_id, user_id, description, created_at
		FROM api_keys
		WHERE key_hash = ?
	`
	var key user.APIKey
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, keyHash).Scan(
		&key.KeyHash,
		&key.TenantID,
		&key.UserID,
		&description,
		&key.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	key.Description = description.String
	return &key, nil
}

// Touch records the last use of an API key
func (r *APIKeyRepository) Touch(ctx context.Context, keyHash string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used = ? WHERE key_hash = ?`, at.UTC(), keyHash)
	if err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
