package task

import (
	"fmt"
	"time"
)

// Status is the workflow status of a task.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusOnHold     Status = "On Hold"
	StatusReview     Status = "Review"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every task status in workflow order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusOnHold, StatusReview, StatusCompleted}

// ParseStatus validates a task status string.
func ParseStatus(value string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown task status %q", ErrInvalidInput, value)
}

// Task is a unit of work inside exactly one project.
type Task struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	ProjectID     string    `json:"project_id"`
	Name          string    `json:"name"`
	Type          string    `json:"type"`
	Status        Status    `json:"status"`
	AssigneeID    *string   `json:"assignee_id,omitempty"`
	EstimateHours *float64  `json:"estimate_hours,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AssignedTo reports whether userID is the task's assignee.
func (t *Task) AssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}
