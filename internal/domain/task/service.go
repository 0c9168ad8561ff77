package task

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

// Service handles task business logic.
type Service struct {
	tasks      Repository
	projects   ProjectRepository
	users      UserRepository
	activities ActivityRepository
	logger     *slog.Logger
}

// NewService creates a new task service.
func NewService(
	tasks Repository,
	projects ProjectRepository,
	users UserRepository,
	activities ActivityRepository,
	logger *slog.Logger,
) *Service {
	return &Service{
		tasks:      tasks,
		projects:   projects,
		users:      users,
		activities: activities,
		logger:     logger,
	}
}

// CreateRequest describes a task creation request.
type CreateRequest struct {
	ProjectID     string
	Name          string
	Type          string
	Status        Status
	AssigneeID    *string
	EstimateHours *float64
}

// UpdateRequest describes a partial task update. Members may only set Status.
type UpdateRequest struct {
	Name          *string
	Type          *string
	Status        *Status
	AssigneeID    *string
	ClearAssignee bool
	EstimateHours *float64
}

func (r UpdateRequest) statusOnly() bool {
	return r.Name == nil && r.Type == nil && r.AssigneeID == nil && !r.ClearAssignee && r.EstimateHours == nil
}

// Create creates a task inside an existing project. Admin only.
func (s *Service) Create(ctx context.Context, actor user.Principal, req CreateRequest) (*Task, error) {
	if !actor.Role.CanManageProjects() {
		return nil, user.ErrForbidden
	}
	name := strings.TrimSpace(req.Name)
	typ := strings.TrimSpace(req.Type)
	if strings.TrimSpace(req.ProjectID) == "" || name == "" || typ == "" {
		return nil, ErrInvalidInput
	}
	if err := validateEstimate(req.EstimateHours); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusToDo
	}
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}

	if err := s.ensureProject(ctx, actor.TenantID, req.ProjectID); err != nil {
		return nil, err
	}
	assignee := nonEmpty(req.AssigneeID)
	if assignee != nil {
		if err := s.ensureAssignee(ctx, actor.TenantID, *assignee); err != nil {
			return nil, err
		}
	}

	t := &Task{
		ID:            uuid.NewString(),
		TenantID:      actor.TenantID,
		ProjectID:     req.ProjectID,
		Name:          name,
		Type:          typ,
		Status:        status,
		AssigneeID:    assignee,
		EstimateHours: req.EstimateHours,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrForeignKeyViolation) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("creating task: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, actor.TenantID, &activity.ActivityEntry{
		ProjectID:    activity.Ref(t.ProjectID),
		TaskID:       activity.Ref(t.ID),
		ActorID:      activity.Ref(actor.UserID),
		ActivityType: activity.TypeTaskCreated,
		Summary:      fmt.Sprintf("Task %q created", t.Name),
	})
	return t, nil
}

// Get fetches a task by ID.
func (s *Service) Get(ctx context.Context, actor user.Principal, id string) (*Task, error) {
	t, err := s.tasks.Get(ctx, actor.TenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return t, nil
}

// ListByProject lists the tasks of a project.
func (s *Service) ListByProject(ctx context.Context, actor user.Principal, projectID string) ([]Task, error) {
	if err := s.ensureProject(ctx, actor.TenantID, projectID); err != nil {
		return nil, err
	}
	return s.tasks.ListByProject(ctx, actor.TenantID, projectID)
}

// ListMine lists the tasks assigned to the caller.
func (s *Service) ListMine(ctx context.Context, actor user.Principal) ([]Task, error) {
	return s.tasks.ListByAssignee(ctx, actor.TenantID, actor.UserID)
}

// Update applies a partial update. Admins may change any field; the assignee
// may change the status of their own task.
func (s *Service) Update(ctx context.Context, actor user.Principal, id string, req UpdateRequest) (*Task, error) {
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeUpdate(actor, t, req); err != nil {
		return nil, err
	}

	previous := t.Status
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		t.Name = name
	}
	if req.Type != nil {
		typ := strings.TrimSpace(*req.Type)
		if typ == "" {
			return nil, ErrInvalidInput
		}
		t.Type = typ
	}
	if req.Status != nil {
		if _, err := ParseStatus(string(*req.Status)); err != nil {
			return nil, err
		}
		t.Status = *req.Status
	}
	if req.ClearAssignee {
		t.AssigneeID = nil
	} else if assignee := nonEmpty(req.AssigneeID); assignee != nil {
		if err := s.ensureAssignee(ctx, actor.TenantID, *assignee); err != nil {
			return nil, err
		}
		t.AssigneeID = assignee
	}
	if req.EstimateHours != nil {
		if err := validateEstimate(req.EstimateHours); err != nil {
			return nil, err
		}
		t.EstimateHours = req.EstimateHours
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}

	entry := &activity.ActivityEntry{
		ProjectID:    activity.Ref(t.ProjectID),
		TaskID:       activity.Ref(t.ID),
		ActorID:      activity.Ref(actor.UserID),
		ActivityType: activity.TypeTaskUpdated,
		Summary:      fmt.Sprintf("Task %q updated", t.Name),
	}
	if t.Status != previous {
		entry.ActivityType = activity.TypeTaskStatusChanged
		entry.Summary = fmt.Sprintf("Task %q status changed to %q", t.Name, t.Status)
		entry.Details = activity.Details(map[string]Status{"from": previous, "to": t.Status})
	}
	activity.Record(ctx, s.activities, s.logger, actor.TenantID, entry)

	return t, nil
}

// Delete removes a task that has no logged work. Admin only.
func (s *Service) Delete(ctx context.Context, actor user.Principal, id string) error {
	if !actor.Role.CanManageProjects() {
		return user.ErrForbidden
	}
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, actor.TenantID, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrTaskNotFound
		case errors.Is(err, repository.ErrForeignKeyViolation):
			return ErrTaskInUse
		default:
			return fmt.Errorf("deleting task: %w", err)
		}
	}

	activity.Record(ctx, s.activities, s.logger, actor.TenantID, &activity.ActivityEntry{
		ProjectID:    activity.Ref(t.ProjectID),
		ActorID:      activity.Ref(actor.UserID),
		ActivityType: activity.TypeTaskDeleted,
		Summary:      fmt.Sprintf("Task %q deleted", t.Name),
		Details:      activity.Details(map[string]string{"task_id": t.ID}),
	})
	return nil
}

func authorizeUpdate(actor user.Principal, t *Task, req UpdateRequest) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleMember:
		if t.AssignedTo(actor.UserID) && req.statusOnly() {
			return nil
		}
		return user.ErrForbidden
	default:
		return user.ErrForbidden
	}
}

func (s *Service) ensureProject(ctx context.Context, tenantID, projectID string) error {
	if _, err := s.projects.Get(ctx, tenantID, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("loading project: %w", err)
	}
	return nil
}

func (s *Service) ensureAssignee(ctx context.Context, tenantID, userID string) error {
	if _, err := s.users.Get(ctx, tenantID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("loading assignee: %w", err)
	}
	return nil
}

func validateEstimate(hours *float64) error {
	if hours != nil && *hours < 0 {
		return fmt.Errorf("%w: estimate must not be negative", ErrInvalidInput)
	}
	return nil
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
