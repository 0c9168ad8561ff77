package user

import (
	"fmt"
	"strings"
	"time"
)

// Role is the single authorization tag carried by every user.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole accepts the canonical names and the legacy Admin/PM and
// User/Team spellings.
func ParseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "admin", "pm":
		return RoleAdmin, nil
	case "member", "user", "team":
		return RoleMember, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, value)
	}
}

// CanManageProjects reports whether the role may create and edit projects,
// tasks and assignments.
func (r Role) CanManageProjects() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleMember:
		return false
	default:
		return false
	}
}

// CanViewReports reports whether the role may read tenant-wide reports.
func (r Role) CanViewReports() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleMember:
		return false
	default:
		return false
	}
}

// User is an account inside a tenant.
type User struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Role           Role      `json:"role"`
	Rank           *string   `json:"rank,omitempty"`
	Specialization *string   `json:"specialization,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Principal identifies the authenticated caller of an operation.
type Principal struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
}

// Principal returns the caller identity for u.
func (u *User) Principal() Principal {
	return Principal{TenantID: u.TenantID, UserID: u.ID, Role: u.Role}
}

// Session is a server-side login session addressed by the hash of its cookie token.
type Session struct {
	TokenHash string
	TenantID  string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// APIKey grants bearer-token access on behalf of a user.
type APIKey struct {
	KeyHash     string
	TenantID    string
	UserID      string
	Description string
	CreatedAt   time.Time
}
