package worklog_test

import (
	"context"
	"testing"

	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/ganot/taskhours/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListMine_ScopesToCaller(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.WorkLogRepository{}
	repo.On("List", ctx, "tenant1", mock.MatchedBy(func(opts worklog.ListOptions) bool {
		return opts.UserID != nil && *opts.UserID == "member1" && opts.Limit == 200
	})).Return([]worklog.WorkLog{{ID: "w1"}}, nil)

	svc := worklog.NewService(repo)
	logs, err := svc.ListMine(ctx, user.Principal{TenantID: "tenant1", UserID: "member1", Role: user.RoleMember}, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	repo.AssertExpectations(t)
}
