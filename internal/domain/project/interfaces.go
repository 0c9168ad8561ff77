package project

import (
	"context"

	"github.com/ganot/taskhours/internal/domain/activity"
)

// Repository provides persistence for projects.
type Repository interface {
	Create(ctx context.Context, proj *Project) error
	Get(ctx context.Context, tenantID, id string) (*Project, error)
	Update(ctx context.Context, proj *Project) error
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]Project, error)
	ListForAssignee(ctx context.Context, tenantID, userID string) ([]Project, error)
}

// ActivityRepository records project history.
type ActivityRepository = activity.Repository
