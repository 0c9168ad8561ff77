package worklog

import (
	"fmt"
	"time"
)

// WorkLog is an immutable record of time spent on a task.
type WorkLog struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	TaskID    string    `json:"task_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the fields required before a log can be stored.
func (w *WorkLog) Validate() error {
	if w.UserID == "" || w.ProjectID == "" || w.TaskID == "" {
		return fmt.Errorf("%w: user, project and task are required", ErrInvalidInput)
	}
	if w.StartTime.IsZero() || w.EndTime.IsZero() {
		return fmt.Errorf("%w: start and end time are required", ErrInvalidInput)
	}
	if !w.EndTime.After(w.StartTime) {
		return ErrInvalidTimeRange
	}
	return nil
}

// DurationSeconds returns the whole seconds between start and end, never
// negative.
func DurationSeconds(start, end time.Time) int64 {
	ms := end.UnixMilli() - start.UnixMilli()
	if ms <= 0 {
		return 0
	}
	return ms / 1000
}

// Seconds returns the whole seconds recorded by w.
func (w *WorkLog) Seconds() int64 {
	return DurationSeconds(w.StartTime, w.EndTime)
}
