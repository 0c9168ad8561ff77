package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated       ActivityType = "project_created"
	TypeProjectUpdated       ActivityType = "project_updated"
	TypeProjectStatusChanged ActivityType = "project_status_changed"
	TypeTaskCreated          ActivityType = "task_created"
	TypeTaskUpdated          ActivityType = "task_updated"
	TypeTaskStatusChanged    ActivityType = "task_status_changed"
	TypeTaskDeleted          ActivityType = "task_deleted"
	TypeTimerStarted         ActivityType = "timer_started"
	TypeTimerAutoPaused      ActivityType = "timer_auto_paused"
	TypeWorkLogRecorded      ActivityType = "worklog_recorded"
	TypeOverdueDigest        ActivityType = "overdue_digest"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	TenantID     string       `json:"tenant_id"`
	ProjectID    *string      `json:"project_id,omitempty"`
	TaskID       *string      `json:"task_id,omitempty"`
	ActorID      *string      `json:"actor_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
