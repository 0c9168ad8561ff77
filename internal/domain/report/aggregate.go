package report

import (
	"time"

	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/worklog"
)

const (
	// OverdueAge is how old an open, assigned task must be to count as overdue.
	OverdueAge = 30 * 24 * time.Hour
	// TrendDays is the length of the completion trend.
	TrendDays = 30

	unknownTaskType = "Unknown"
	dateLayout      = "2006-01-02"
)

// DurationSeconds returns the whole seconds recorded by a work log, never negative.
func DurationSeconds(w worklog.WorkLog) int64 {
	return worklog.DurationSeconds(w.StartTime, w.EndTime)
}

// Hours converts seconds to hours.
func Hours(seconds int64) float64 {
	return float64(seconds) / 3600
}

// ProjectTotals sums logged seconds per project.
func ProjectTotals(logs []worklog.WorkLog) map[string]int64 {
	totals := make(map[string]int64)
	for _, w := range logs {
		totals[w.ProjectID] += DurationSeconds(w)
	}
	return totals
}

// CountStatuses buckets tasks by status.
func CountStatuses(tasks []task.Task) StatusCounts {
	counts := StatusCounts{ByStatus: make(map[task.Status]int, len(task.Statuses))}
	for _, s := range task.Statuses {
		counts.ByStatus[s] = 0
	}
	for _, t := range tasks {
		counts.Total++
		counts.ByStatus[t.Status]++
		switch t.Status {
		case task.StatusCompleted:
			counts.Completed++
		case task.StatusInProgress:
			counts.InProgress++
		case task.StatusOnHold:
			counts.OnHold++
		}
	}
	return counts
}

// UserTotals folds the logs inside [from, to] into per-user totals broken
// down by project and task type. Logs whose task is unknown count under
// "Unknown".
func UserTotals(logs []worklog.WorkLog, tasks []task.Task, from, to time.Time) map[string]*UserTotal {
	taskTypes := make(map[string]string, len(tasks))
	for _, t := range tasks {
		taskTypes[t.ID] = t.Type
	}

	totals := make(map[string]*UserTotal)
	for _, w := range logs {
		if w.StartTime.Before(from) || w.EndTime.After(to) {
			continue
		}
		ut, ok := totals[w.UserID]
		if !ok {
			ut = &UserTotal{
				UserID:     w.UserID,
				ByProject:  make(map[string]float64),
				ByTaskType: make(map[string]float64),
			}
			totals[w.UserID] = ut
		}
		secs := DurationSeconds(w)
		typ, ok := taskTypes[w.TaskID]
		if !ok || typ == "" {
			typ = unknownTaskType
		}
		ut.Seconds += secs
		ut.ByProject[w.ProjectID] += Hours(secs)
		ut.ByTaskType[typ] += Hours(secs)
	}
	for _, ut := range totals {
		ut.Hours = Hours(ut.Seconds)
	}
	return totals
}

// Overdue counts, per assignee, the open tasks created more than OverdueAge ago.
func Overdue(tasks []task.Task, now time.Time) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		if t.Status == task.StatusCompleted || t.AssigneeID == nil {
			continue
		}
		if now.Sub(t.CreatedAt) > OverdueAge {
			counts[*t.AssigneeID]++
		}
	}
	return counts
}

// CompletionTrend counts completed tasks per UTC creation date over the last
// days days, oldest first, with empty dates zero-filled. Tasks carry no
// completion timestamp, so creation date stands in for it.
func CompletionTrend(tasks []task.Task, now time.Time, days int) []TrendPoint {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	first := today.AddDate(0, 0, -days)

	byDate := make(map[string]int)
	for _, t := range tasks {
		if t.Status != task.StatusCompleted {
			continue
		}
		created := t.CreatedAt.UTC()
		if created.Before(first) || created.After(now) {
			continue
		}
		byDate[created.Format(dateLayout)]++
	}

	points := make([]TrendPoint, 0, days+1)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		points = append(points, TrendPoint{Date: key, Completed: byDate[key]})
	}
	return points
}
