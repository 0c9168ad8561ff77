package worklog

import "context"

// Repository provides persistence for work logs.
type Repository interface {
	Create(ctx context.Context, w *WorkLog) error
	List(ctx context.Context, tenantID string, opts ListOptions) ([]WorkLog, error)
}
