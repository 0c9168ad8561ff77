package worklog

import (
	"context"
	"fmt"

	"github.com/ganot/taskhours/internal/domain/user"
)

const defaultHistoryLimit = 200

// Service exposes work log history.
type Service struct {
	repo Repository
}

// NewService creates a new work log service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListMine returns the caller's most recent work logs, newest first.
func (s *Service) ListMine(ctx context.Context, actor user.Principal, limit int) ([]WorkLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	userID := actor.UserID
	logs, err := s.repo.List(ctx, actor.TenantID, ListOptions{UserID: &userID, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("listing work logs: %w", err)
	}
	return logs, nil
}
