package user

import (
	"context"
	"time"
)

// Repository provides persistence for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, tenantID, id string) (*User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
	List(ctx context.Context, tenantID string) ([]User, error)
	ListTenants(ctx context.Context) ([]string, error)
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

// SessionRepository provides persistence for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, tokenHash string) (*Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// APIKeyRepository provides persistence for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	Get(ctx context.Context, keyHash string) (*APIKey, error)
	Touch(ctx context.Context, keyHash string, at time.Time) error
}
