package project_test

import (
	"context"
	"testing"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/repository"
	"github.com/ganot/taskhours/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	admin  = user.Principal{TenantID: "tenant1", UserID: "admin1", Role: user.RoleAdmin}
	member = user.Principal{TenantID: "tenant1", UserID: "member1", Role: user.RoleMember}
)

func TestProjectService_CreateDefaults(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*project.Project")).Return(nil)
	activities := &mocks.ActivityRepository{}
	activities.On("Log", ctx, "tenant1", mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeProjectCreated
	})).Return(nil)

	deadline := time.Date(2026, 11, 30, 15, 4, 5, 0, time.UTC)
	svc := project.NewService(repo, activities, nil)
	proj, err := svc.Create(ctx, admin, project.CreateRequest{Name: " Website ", Type: "Web", Deadline: &deadline})
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "Website", proj.Name)
	require.Equal(t, project.StatusInProgress, proj.Status)
	require.Equal(t, "admin1", proj.OwnerID)
	require.Equal(t, "2026-11-30", proj.Deadline.Format(project.DeadlineLayout))
	require.Zero(t, proj.Deadline.Hour())
	activities.AssertExpectations(t)
}

func TestProjectService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := project.NewService(&mocks.ProjectRepository{}, nil, nil)

	_, err := svc.Create(ctx, admin, project.CreateRequest{Name: "", Type: "Web"})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Create(ctx, admin, project.CreateRequest{Name: "x", Type: "Web", Status: "Paused"})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Create(ctx, member, project.CreateRequest{Name: "x", Type: "Web"})
	require.ErrorIs(t, err, user.ErrForbidden)
}

func TestProjectService_ListByRole(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("ListByOwner", ctx, "tenant1", "admin1").Return([]project.Project{{ID: "p1"}, {ID: "p2"}}, nil)
	repo.On("ListForAssignee", ctx, "tenant1", "member1").Return([]project.Project{{ID: "p2"}}, nil)

	svc := project.NewService(repo, nil, nil)
	owned, err := svc.List(ctx, admin)
	require.NoError(t, err)
	require.Len(t, owned, 2)

	assigned, err := svc.List(ctx, member)
	require.NoError(t, err)
	require.Len(t, assigned, 1)

	_, err = svc.List(ctx, user.Principal{TenantID: "tenant1", UserID: "x", Role: "guest"})
	require.ErrorIs(t, err, user.ErrForbidden)
}

func TestProjectService_UpdateStatusRecordsHistory(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "tenant1", "p1").Return(&project.Project{
		ID: "p1", TenantID: "tenant1", Name: "Website", Type: "Web", Status: project.StatusInProgress, OwnerID: "admin1",
	}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*project.Project")).Return(nil)

	activities := &mocks.ActivityRepository{}
	activities.On("Log", ctx, "tenant1", mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeProjectStatusChanged &&
			e.Details == `{"from":"In Progress","to":"Archived"}`
	})).Return(nil)

	svc := project.NewService(repo, activities, nil)
	proj, err := svc.Archive(ctx, admin, "p1")
	require.NoError(t, err)
	require.Equal(t, project.StatusArchived, proj.Status)
	activities.AssertExpectations(t)
}

func TestProjectService_UpdateErrors(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "tenant1", "missing").Return((*project.Project)(nil), repository.ErrNotFound)

	svc := project.NewService(repo, nil, nil)
	name := "New"
	_, err := svc.Update(ctx, admin, "missing", project.UpdateRequest{Name: &name})
	require.ErrorIs(t, err, project.ErrProjectNotFound)

	_, err = svc.Update(ctx, member, "p1", project.UpdateRequest{Name: &name})
	require.ErrorIs(t, err, user.ErrForbidden)
}
