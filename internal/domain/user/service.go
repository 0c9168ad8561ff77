package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/ganot/taskhours/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTenant is used when signup or login omit a tenant slug.
	DefaultTenant = "default"
	// DefaultSessionTTL is the lifetime of a login session.
	DefaultSessionTTL = 24 * time.Hour

	minPasswordLen = 6
	tokenBytes     = 32
)

// Service handles accounts, login sessions and API keys.
type Service struct {
	users      Repository
	sessions   SessionRepository
	keys       APIKeyRepository
	logger     *slog.Logger
	hashCost   int
	sessionTTL time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithSessionTTL overrides the login session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new user service.
func NewService(users Repository, sessions SessionRepository, keys APIKeyRepository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:      users,
		sessions:   sessions,
		keys:       keys,
		logger:     logger,
		hashCost:   bcrypt.DefaultCost,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionTTL returns the configured login session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// SignupRequest defines account creation inputs.
type SignupRequest struct {
	TenantID       string
	Name           string
	Email          string
	Password       string
	Role           string
	Rank           *string
	Specialization *string
}

// Signup validates and creates a new user through the public signup flow.
// Only the first account of a tenant may take the admin role; later admins
// are created with CreateAccount.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	return s.create(ctx, req, false)
}

// CreateAccount creates a user with any role. It backs operator tooling and
// must not be reachable by unauthenticated callers.
func (s *Service) CreateAccount(ctx context.Context, req SignupRequest) (*User, error) {
	return s.create(ctx, req, true)
}

func (s *Service) create(ctx context.Context, req SignupRequest, anyRole bool) (*User, error) {
	tenantID := normalizeTenant(req.TenantID)
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len(req.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLen)
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if role == RoleAdmin && !anyRole {
		n, err := s.users.CountByTenant(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("counting tenant users: %w", err)
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: tenant %q already has members, ask an admin for access", ErrForbidden, tenantID)
		}
	}

	if _, err := s.users.GetByEmail(ctx, tenantID, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		Name:           name,
		Email:          email,
		PasswordHash:   string(hash),
		Role:           role,
		Rank:           trimmedPtr(req.Rank),
		Specialization: trimmedPtr(req.Specialization),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.log().Info("user created", "tenant_id", tenantID, "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Authenticate checks an email/password pair.
func (s *Service) Authenticate(ctx context.Context, tenantID, email, password string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, normalizeTenant(tenantID), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// StartSession creates a login session for u and returns the raw cookie token.
func (s *Service) StartSession(ctx context.Context, u *User) (string, *Session, error) {
	token, err := newToken()
	if err != nil {
		return "", nil, err
	}
	now := s.now().UTC()
	sess := &Session{
		TokenHash: HashToken(token),
		TenantID:  u.TenantID,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return "", nil, fmt.Errorf("creating session: %w", err)
	}
	return token, sess, nil
}

// Login authenticates and starts a session in one step.
func (s *Service) Login(ctx context.Context, tenantID, email, password string) (*User, string, error) {
	u, err := s.Authenticate(ctx, tenantID, email, password)
	if err != nil {
		return nil, "", err
	}
	token, _, err := s.StartSession(ctx, u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Logout removes the session behind token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, HashToken(token)); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ResolveSession returns the principal behind a session cookie token.
func (s *Service) ResolveSession(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrUnauthenticated
	}
	sess, err := s.sessions.Get(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Principal{}, ErrUnauthenticated
		}
		return Principal{}, fmt.Errorf("loading session: %w", err)
	}
	if !s.now().Before(sess.ExpiresAt) {
		return Principal{}, ErrUnauthenticated
	}
	return s.principalFor(ctx, sess.TenantID, sess.UserID)
}

// IssueAPIKey creates a bearer key for the given user and returns the raw key.
func (s *Service) IssueAPIKey(ctx context.Context, tenantID, userID, description string) (string, error) {
	if _, err := s.Get(ctx, tenantID, userID); err != nil {
		return "", err
	}
	raw, err := newToken()
	if err != nil {
		return "", err
	}
	key := &APIKey{
		KeyHash:     HashToken(raw),
		TenantID:    tenantID,
		UserID:      userID,
		Description: description,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return "", fmt.Errorf("creating api key: %w", err)
	}
	return raw, nil
}

// ResolveAPIKey returns the principal behind a bearer key.
func (s *Service) ResolveAPIKey(ctx context.Context, raw string) (Principal, error) {
	if raw == "" {
		return Principal{}, ErrUnauthenticated
	}
	hash := HashToken(raw)
	key, err := s.keys.Get(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Principal{}, ErrUnauthenticated
		}
		return Principal{}, fmt.Errorf("loading api key: %w", err)
	}
	if err := s.keys.Touch(ctx, hash, s.now().UTC()); err != nil {
		s.log().Warn("failed to record api key use", "error", err)
	}
	return s.principalFor(ctx, key.TenantID, key.UserID)
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purging sessions: %w", err)
	}
	return n, nil
}

// Get fetches a user by ID.
func (s *Service) Get(ctx context.Context, tenantID, id string) (*User, error) {
	u, err := s.users.Get(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by email within a tenant.
func (s *Service) GetByEmail(ctx context.Context, tenantID, email string) (*User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, normalizeTenant(tenantID), email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// List returns all users in the caller's tenant. Admin only.
func (s *Service) List(ctx context.Context, actor Principal) ([]User, error) {
	if !actor.Role.CanManageProjects() {
		return nil, ErrForbidden
	}
	return s.users.List(ctx, actor.TenantID)
}

// ListTenants returns every tenant with at least one user. It serves
// background jobs, which run without a caller.
func (s *Service) ListTenants(ctx context.Context) ([]string, error) {
	tenants, err := s.users.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	return tenants, nil
}

func (s *Service) principalFor(ctx context.Context, tenantID, userID string) (Principal, error) {
	u, err := s.users.Get(ctx, tenantID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Principal{}, ErrUnauthenticated
		}
		return Principal{}, fmt.Errorf("loading user: %w", err)
	}
	return u.Principal(), nil
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// HashToken returns the hex sha256 of a session token or API key.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func normalizeTenant(tenantID string) string {
	tenantID = strings.ToLower(strings.TrimSpace(tenantID))
	if tenantID == "" {
		return DefaultTenant
	}
	return tenantID
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	return email, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
