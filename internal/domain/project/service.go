package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/repository"
	"github.com/google/uuid"
)

// Service handles project operations.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new project service.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger) *Service {
	return &Service{repo: repo, activities: activities, logger: logger}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Name     string
	Type     string
	Status   Status
	Deadline *time.Time
}

// UpdateRequest defines a partial project update. Nil fields are untouched.
type UpdateRequest struct {
	Name          *string
	Type          *string
	Status        *Status
	Deadline      *time.Time
	ClearDeadline bool
}

// Create creates a new project owned by the calling admin.
func (s *Service) Create(ctx context.Context, actor user.Principal, req CreateRequest) (*Project, error) {
	if !actor.Role.CanManageProjects() {
		return nil, user.ErrForbidden
	}
	name := strings.TrimSpace(req.Name)
	typ := strings.TrimSpace(req.Type)
	if name == "" || typ == "" {
		return nil, ErrInvalidInput
	}

	status := req.Status
	if status == "" {
		status = StatusInProgress
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	proj := &Project{
		ID:        uuid.NewString(),
		TenantID:  actor.TenantID,
		Name:      name,
		Type:      typ,
		Status:    status,
		OwnerID:   actor.UserID,
		Deadline:  dateOnly(req.Deadline),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, proj); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, actor.TenantID, &activity.ActivityEntry{
		ProjectID:    activity.Ref(proj.ID),
		ActorID:      activity.Ref(actor.UserID),
		ActivityType: activity.TypeProjectCreated,
		Summary:      fmt.Sprintf("Project %q created", proj.Name),
	})
	return proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, actor user.Principal, id string) (*Project, error) {
	proj, err := s.repo.Get(ctx, actor.TenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

// List returns the projects visible to the caller: owned projects for
// admins, projects holding tasks assigned to them for members.
func (s *Service) List(ctx context.Context, actor user.Principal) ([]Project, error) {
	switch actor.Role {
	case user.RoleAdmin:
		return s.repo.ListByOwner(ctx, actor.TenantID, actor.UserID)
	case user.RoleMember:
		return s.repo.ListForAssignee(ctx, actor.TenantID, actor.UserID)
	default:
		return nil, user.ErrForbidden
	}
}

// Update applies a partial update. Admin only.
func (s *Service) Update(ctx context.Context, actor user.Principal, id string, req UpdateRequest) (*Project, error) {
	if !actor.Role.CanManageProjects() {
		return nil, user.ErrForbidden
	}
	proj, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	previous := proj.Status
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		proj.Name = name
	}
	if req.Type != nil {
		typ := strings.TrimSpace(*req.Type)
		if typ == "" {
			return nil, ErrInvalidInput
		}
		proj.Type = typ
	}
	if req.Status != nil {
		if _, err := ParseStatus(string(*req.Status)); err != nil {
			return nil, err
		}
		proj.Status = *req.Status
	}
	if req.ClearDeadline {
		proj.Deadline = nil
	} else if req.Deadline != nil {
		proj.Deadline = dateOnly(req.Deadline)
	}

	if err := s.repo.Update(ctx, proj); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	entry := &activity.ActivityEntry{
		ProjectID:    activity.Ref(proj.ID),
		ActorID:      activity.Ref(actor.UserID),
		ActivityType: activity.TypeProjectUpdated,
		Summary:      fmt.Sprintf("Project %q updated", proj.Name),
	}
	if proj.Status != previous {
		entry.ActivityType = activity.TypeProjectStatusChanged
		entry.Summary = fmt.Sprintf("Project %q status changed to %q", proj.Name, proj.Status)
		entry.Details = activity.Details(map[string]Status{"from": previous, "to": proj.Status})
	}
	activity.Record(ctx, s.activities, s.logger, actor.TenantID, entry)

	return proj, nil
}

// Archive moves a project to the Archived status.
func (s *Service) Archive(ctx context.Context, actor user.Principal, id string) (*Project, error) {
	status := StatusArchived
	return s.Update(ctx, actor, id, UpdateRequest{Status: &status})
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}
