package report

import (
	"fmt"
	"time"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/task"
)

// Timeframe selects the look-back window of the team report.
type Timeframe string

const (
	TimeframeDay   Timeframe = "day"
	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
)

// ParseTimeframe validates a timeframe, defaulting to a week.
func ParseTimeframe(value string) (Timeframe, error) {
	switch Timeframe(value) {
	case "":
		return TimeframeWeek, nil
	case TimeframeDay, TimeframeWeek, TimeframeMonth:
		return Timeframe(value), nil
	default:
		return "", fmt.Errorf("%w: unknown timeframe %q", ErrInvalidInput, value)
	}
}

// Start returns the beginning of the window ending at now.
func (tf Timeframe) Start(now time.Time) time.Time {
	switch tf {
	case TimeframeDay:
		return now.Add(-24 * time.Hour)
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeWeek:
		return now.Add(-7 * 24 * time.Hour)
	default:
		return now.Add(-7 * 24 * time.Hour)
	}
}

// StatusCounts summarises task statuses. ByStatus holds every status, so its
// buckets always sum to Total.
type StatusCounts struct {
	Total      int                 `json:"total"`
	Completed  int                 `json:"completed"`
	InProgress int                 `json:"in_progress"`
	OnHold     int                 `json:"on_hold"`
	ByStatus   map[task.Status]int `json:"by_status"`
}

// ProjectOverview is one row of the projects dashboard.
type ProjectOverview struct {
	Project project.Project `json:"project"`
	Seconds int64           `json:"seconds"`
	Hours   float64         `json:"hours"`
	Tasks   StatusCounts    `json:"tasks"`
}

// ProjectSummary adds the per-user breakdown of a single project.
type ProjectSummary struct {
	ProjectOverview
	HoursByUser map[string]float64 `json:"hours_by_user"`
}

// UserTotal is one user's logged time inside a window.
type UserTotal struct {
	UserID     string             `json:"user_id"`
	Name       string             `json:"name,omitempty"`
	Seconds    int64              `json:"seconds"`
	Hours      float64            `json:"hours"`
	ByProject  map[string]float64 `json:"hours_by_project"`
	ByTaskType map[string]float64 `json:"hours_by_task_type"`
	Overdue    int                `json:"overdue_tasks"`
}

// TeamReport is the team productivity view.
type TeamReport struct {
	Timeframe Timeframe   `json:"timeframe"`
	From      time.Time   `json:"from"`
	To        time.Time   `json:"to"`
	Users     []UserTotal `json:"users"`
}

// TrendPoint is the number of completed tasks for one UTC date.
type TrendPoint struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
}

// TaskAnalytics is the task dashboard view.
type TaskAnalytics struct {
	Counts StatusCounts `json:"counts"`
	Trend  []TrendPoint `json:"completion_trend"`
}

// TimeRow is one work log line in a time report.
type TimeRow struct {
	WorkLogID   string    `json:"work_log_id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	ProjectID   string    `json:"project_id"`
	ProjectName string    `json:"project_name"`
	TaskID      string    `json:"task_id"`
	TaskName    string    `json:"task_name"`
	TaskType    string    `json:"task_type"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Seconds     int64     `json:"seconds"`
	Hours       float64   `json:"hours"`
	Note        string    `json:"note,omitempty"`
}

// TimeReport lists every work log inside [From, To].
type TimeReport struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Rows         []TimeRow `json:"rows"`
	TotalSeconds int64     `json:"total_seconds"`
	TotalHours   float64   `json:"total_hours"`
}
