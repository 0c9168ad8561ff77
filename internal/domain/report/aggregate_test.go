package report_test

import (
	"testing"
	"time"

	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func logFor(userID, projectID, taskID string, start time.Time, d time.Duration) worklog.WorkLog {
	return worklog.WorkLog{
		UserID: userID, ProjectID: projectID, TaskID: taskID,
		StartTime: start, EndTime: start.Add(d),
	}
}

func taskWith(id string, status task.Status, assignee string, created time.Time) task.Task {
	t := task.Task{ID: id, ProjectID: "p1", Type: "Development", Status: status, CreatedAt: created}
	if assignee != "" {
		t.AssigneeID = &assignee
	}
	return t
}

func TestDurationSeconds(t *testing.T) {
	require.Equal(t, int64(0), report.DurationSeconds(logFor("u", "p", "t", base, 0)))
	require.Equal(t, int64(0), report.DurationSeconds(logFor("u", "p", "t", base, -time.Minute)))
	require.Equal(t, int64(59), report.DurationSeconds(logFor("u", "p", "t", base, 59999*time.Millisecond)))
}

func TestProjectTotals_SumsToThreeHours(t *testing.T) {
	logs := []worklog.WorkLog{
		logFor("u1", "p1", "t1", base, 1800*time.Second),
		logFor("u2", "p1", "t1", base, 3600*time.Second),
		logFor("u1", "p1", "t2", base, 5400*time.Second),
	}
	totals := report.ProjectTotals(logs)
	require.Equal(t, int64(10800), totals["p1"])
	require.InDelta(t, 3.0, report.Hours(totals["p1"]), 1e-9)
}

func TestProjectTotals_PartitionIndependent(t *testing.T) {
	logs := []worklog.WorkLog{
		logFor("u1", "p1", "t1", base, 17*time.Minute),
		logFor("u1", "p2", "t3", base, 41*time.Minute),
		logFor("u2", "p1", "t1", base, 2*time.Hour+3*time.Second),
		logFor("u2", "p2", "t3", base, 9*time.Second),
	}
	var want int64
	for _, w := range logs {
		want += report.DurationSeconds(w)
	}

	whole := report.ProjectTotals(logs)
	first := report.ProjectTotals(logs[:2])
	second := report.ProjectTotals(logs[2:])

	var got int64
	for id, secs := range whole {
		require.Equal(t, first[id]+second[id], secs)
		got += secs
	}
	require.Equal(t, want, got)
}

func TestCountStatuses_BucketsSumToTotal(t *testing.T) {
	tasks := []task.Task{
		taskWith("1", task.StatusToDo, "", base),
		taskWith("2", task.StatusInProgress, "", base),
		taskWith("3", task.StatusInProgress, "", base),
		taskWith("4", task.StatusOnHold, "", base),
		taskWith("5", task.StatusReview, "", base),
		taskWith("6", task.StatusCompleted, "", base),
	}
	counts := report.CountStatuses(tasks)
	require.Equal(t, 6, counts.Total)
	require.Equal(t, 1, counts.Completed)
	require.Equal(t, 2, counts.InProgress)
	require.Equal(t, 1, counts.OnHold)

	sum := 0
	for _, n := range counts.ByStatus {
		sum += n
	}
	require.Equal(t, counts.Total, sum)
	require.Len(t, counts.ByStatus, len(task.Statuses))

	empty := report.CountStatuses(nil)
	require.Equal(t, 0, empty.Total)
	require.Equal(t, 0, empty.ByStatus[task.StatusReview])
}

func TestUserTotals_WindowAndTaskTypes(t *testing.T) {
	tasks := []task.Task{{ID: "t1", Type: "Design"}, {ID: "t2", Type: "Development"}}
	from := base.Add(-24 * time.Hour)
	logs := []worklog.WorkLog{
		logFor("u1", "p1", "t1", base, time.Hour),
		logFor("u1", "p2", "t2", base.Add(time.Hour), 30*time.Minute),
		logFor("u1", "p2", "gone", base.Add(2*time.Hour), 30*time.Minute),
		// Outside the window on either edge.
		logFor("u1", "p1", "t1", from.Add(-time.Minute), time.Hour),
		logFor("u2", "p1", "t1", base.Add(-time.Minute), 2*time.Minute),
	}

	totals := report.UserTotals(logs, tasks, from, base)
	require.NotContains(t, totals, "u2")

	u1 := totals["u1"]
	require.NotNil(t, u1)
	require.Equal(t, int64(7200), u1.Seconds)
	require.InDelta(t, 2.0, u1.Hours, 1e-9)
	require.InDelta(t, 1.0, u1.ByProject["p1"], 1e-9)
	require.InDelta(t, 1.0, u1.ByProject["p2"], 1e-9)
	require.InDelta(t, 1.0, u1.ByTaskType["Design"], 1e-9)
	require.InDelta(t, 0.5, u1.ByTaskType["Development"], 1e-9)
	require.InDelta(t, 0.5, u1.ByTaskType["Unknown"], 1e-9)
}

func TestOverdue_ThirtyDayThreshold(t *testing.T) {
	tasks := []task.Task{
		taskWith("old", task.StatusInProgress, "u1", base.Add(-31*24*time.Hour)),
		taskWith("recent", task.StatusInProgress, "u1", base.Add(-29*24*time.Hour)),
		taskWith("done", task.StatusCompleted, "u1", base.Add(-60*24*time.Hour)),
		taskWith("orphan", task.StatusToDo, "", base.Add(-60*24*time.Hour)),
	}
	overdue := report.Overdue(tasks, base)
	require.Equal(t, 1, overdue["u1"])
	require.Len(t, overdue, 1)
}

func TestCompletionTrend(t *testing.T) {
	tasks := []task.Task{
		taskWith("1", task.StatusCompleted, "", base.Add(-2*time.Hour)),
		taskWith("2", task.StatusCompleted, "", base.Add(-3*time.Hour)),
		taskWith("3", task.StatusCompleted, "", base.AddDate(0, 0, -5)),
		taskWith("4", task.StatusInProgress, "", base),
		taskWith("5", task.StatusCompleted, "", base.AddDate(0, 0, -45)),
	}
	trend := report.CompletionTrend(tasks, base, 30)
	require.Len(t, trend, 31)
	require.Equal(t, "2026-02-13", trend[0].Date)
	require.Equal(t, "2026-03-15", trend[30].Date)
	require.Equal(t, 2, trend[30].Completed)
	require.Equal(t, 1, trend[25].Completed)

	total := 0
	for _, p := range trend {
		total += p.Completed
	}
	require.Equal(t, 3, total)
}

func TestTimeframe(t *testing.T) {
	tf, err := report.ParseTimeframe("")
	require.NoError(t, err)
	require.Equal(t, report.TimeframeWeek, tf)

	_, err = report.ParseTimeframe("year")
	require.ErrorIs(t, err, report.ErrInvalidInput)

	require.Equal(t, base.Add(-24*time.Hour), report.TimeframeDay.Start(base))
	require.Equal(t, base.Add(-7*24*time.Hour), report.TimeframeWeek.Start(base))
	require.Equal(t, time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC), report.TimeframeMonth.Start(base))
}
