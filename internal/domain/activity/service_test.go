package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()
	tenantID := "tenant1"

	repo := &mocks.ActivityRepository{}
	entry := &activity.ActivityEntry{
		ProjectID:    activity.Ref("proj1"),
		ActivityType: activity.TypeTaskCreated,
		Summary:      "created",
	}

	opts := activity.ListActivityOptions{ProjectID: activity.Ref("proj1"), Limit: 100}
	repo.On("Log", ctx, tenantID, entry).Return(nil)
	repo.On("List", ctx, tenantID, opts).Return([]activity.ActivityEntry{}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, tenantID, entry))
	require.False(t, entry.CreatedAt.IsZero())

	_, err := svc.GetRecentActivity(ctx, tenantID, activity.ListActivityOptions{ProjectID: activity.Ref("proj1")})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestActivityService_RejectsUntypedEntry(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	err := svc.LogActivity(context.Background(), "tenant1", &activity.ActivityEntry{Summary: "x"})
	require.ErrorIs(t, err, activity.ErrInvalidInput)
}

func TestRecord_SwallowsFailures(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, "tenant1", mock.Anything).Return(errors.New("disk full"))

	require.NotPanics(t, func() {
		activity.Record(ctx, repo, nil, "tenant1", &activity.ActivityEntry{ActivityType: activity.TypeTaskDeleted})
	})
	repo.AssertNumberOfCalls(t, "Log", 1)

	// A nil repository disables recording.
	activity.Record(ctx, nil, nil, "tenant1", &activity.ActivityEntry{ActivityType: activity.TypeTaskDeleted})
}

func TestDetailsAndRef(t *testing.T) {
	require.Equal(t, `{"from":"a","to":"b"}`, activity.Details(map[string]string{"from": "a", "to": "b"}))
	require.Equal(t, "", activity.Details(func() {}))
	require.Nil(t, activity.Ref(""))
	require.Equal(t, "x", *activity.Ref("x"))
}
