package task

import (
	"context"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/user"
)

// Repository provides persistence for tasks.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, tenantID, id string) (*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, tenantID, id string) error
	ListByProject(ctx context.Context, tenantID, projectID string) ([]Task, error)
	ListByAssignee(ctx context.Context, tenantID, userID string) ([]Task, error)
}

// ProjectRepository verifies parent projects.
type ProjectRepository interface {
	Get(ctx context.Context, tenantID, id string) (*project.Project, error)
}

// UserRepository verifies assignees.
type UserRepository interface {
	Get(ctx context.Context, tenantID, id string) (*user.User, error)
}

// ActivityRepository records task history.
type ActivityRepository = activity.Repository
