package mocks

import (
	"context"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/stretchr/testify/mock"
)

// UserRepository is a mock for user.Repository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, tenantID, id string) (*user.User, error) {
	args := m.Called(ctx, tenantID, id)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, tenantID, email string) (*user.User, error) {
	args := m.Called(ctx, tenantID, email)
	if u, ok := args.Get(0).(*user.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) List(ctx context.Context, tenantID string) ([]user.User, error) {
	args := m.Called(ctx, tenantID)
	if list, ok := args.Get(0).([]user.User); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) ListTenants(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	args := m.Called(ctx, tenantID)
	return args.Int(0), args.Error(1)
}

// SessionRepository is a mock for user.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *user.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, tokenHash string) (*user.Session, error) {
	args := m.Called(ctx, tokenHash)
	if sess, ok := args.Get(0).(*user.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// APIKeyRepository is a mock for user.APIKeyRepository.
type APIKeyRepository struct {
	mock.Mock
}

func (m *APIKeyRepository) Create(ctx context.Context, key *user.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *APIKeyRepository) Get(ctx context.Context, keyHash string) (*user.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if key, ok := args.Get(0).(*user.APIKey); ok {
		return key, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) Touch(ctx context.Context, keyHash string, at time.Time) error {
	args := m.Called(ctx, keyHash, at)
	return args.Error(0)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, tenantID, id string) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]project.Project, error) {
	args := m.Called(ctx, tenantID, ownerID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListForAssignee(ctx context.Context, tenantID, userID string) ([]project.Project, error) {
	args := m.Called(ctx, tenantID, userID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TaskRepository is a mock for task.Repository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, tenantID, id string) (*task.Task, error) {
	args := m.Called(ctx, tenantID, id)
	if t, ok := args.Get(0).(*task.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, tenantID, id string) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *TaskRepository) ListByProject(ctx context.Context, tenantID, projectID string) ([]task.Task, error) {
	args := m.Called(ctx, tenantID, projectID)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) ListByAssignee(ctx context.Context, tenantID, userID string) ([]task.Task, error) {
	args := m.Called(ctx, tenantID, userID)
	if list, ok := args.Get(0).([]task.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// WorkLogRepository is a mock for worklog.Repository.
type WorkLogRepository struct {
	mock.Mock
}

func (m *WorkLogRepository) Create(ctx context.Context, w *worklog.WorkLog) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *WorkLogRepository) List(ctx context.Context, tenantID string, opts worklog.ListOptions) ([]worklog.WorkLog, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]worklog.WorkLog); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TimerRepository is a mock for timer.Repository.
type TimerRepository struct {
	mock.Mock
}

func (m *TimerRepository) Get(ctx context.Context, tenantID, userID string) (*timer.Session, error) {
	args := m.Called(ctx, tenantID, userID)
	if sess, ok := args.Get(0).(*timer.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimerRepository) Create(ctx context.Context, sess *timer.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *TimerRepository) Update(ctx context.Context, sess *timer.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *TimerRepository) Delete(ctx context.Context, tenantID, userID string) error {
	args := m.Called(ctx, tenantID, userID)
	return args.Error(0)
}

func (m *TimerRepository) CommitStop(ctx context.Context, sess *timer.Session, log *worklog.WorkLog) error {
	args := m.Called(ctx, sess, log)
	return args.Error(0)
}

func (m *TimerRepository) ListRunningBefore(ctx context.Context, cutoff time.Time) ([]timer.Session, error) {
	args := m.Called(ctx, cutoff)
	if list, ok := args.Get(0).([]timer.Session); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, tenantID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Snapshotter is a mock for report.Snapshotter.
type Snapshotter struct {
	mock.Mock
}

func (m *Snapshotter) Snapshot(ctx context.Context, tenantID string, opts report.SnapshotOptions) (*report.Snapshot, error) {
	args := m.Called(ctx, tenantID, opts)
	if snap, ok := args.Get(0).(*report.Snapshot); ok {
		return snap, args.Error(1)
	}
	return nil, args.Error(1)
}
