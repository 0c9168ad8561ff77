package project

import (
	"fmt"
	"time"
)

// Status is the lifecycle status of a project.
type Status string

const (
	StatusInProgress Status = "In Progress"
	StatusOnHold     Status = "On Hold"
	StatusCompleted  Status = "Completed"
	StatusArchived   Status = "Archived"
)

// Statuses lists every project status in display order.
var Statuses = []Status{StatusInProgress, StatusOnHold, StatusCompleted, StatusArchived}

// ParseStatus validates a project status string.
func ParseStatus(value string) (Status, error) {
	for _, s := range Statuses {
		if string(s) == value {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: unknown project status %q", ErrInvalidInput, value)
}

// Project groups tasks under an owning admin.
type Project struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Status    Status     `json:"status"`
	OwnerID   string     `json:"owner_id"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// DeadlineLayout is the wire and storage format of project deadlines.
const DeadlineLayout = "2006-01-02"
