package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
)

// Service builds dashboard views from a single consistent snapshot per call.
type Service struct {
	snapshots Snapshotter
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new report service.
func NewService(snapshots Snapshotter, opts ...Option) *Service {
	s := &Service{snapshots: snapshots, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProjectOverview returns hours and task counts for the projects the admin
// owns, optionally filtered by status.
func (s *Service) ProjectOverview(ctx context.Context, actor user.Principal, status *project.Status) ([]ProjectOverview, error) {
	if !actor.Role.CanViewReports() {
		return nil, user.ErrForbidden
	}
	snap, err := s.snapshot(ctx, actor.TenantID, SnapshotOptions{})
	if err != nil {
		return nil, err
	}

	totals := ProjectTotals(snap.WorkLogs)
	tasksByProject := groupTasks(snap.Tasks)

	out := make([]ProjectOverview, 0, len(snap.Projects))
	for _, p := range snap.Projects {
		if p.OwnerID != actor.UserID {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		out = append(out, ProjectOverview{
			Project: p,
			Seconds: totals[p.ID],
			Hours:   Hours(totals[p.ID]),
			Tasks:   CountStatuses(tasksByProject[p.ID]),
		})
	}
	return out, nil
}

// ProjectSummary returns a single project's totals. Members may only see
// projects holding a task assigned to them.
func (s *Service) ProjectSummary(ctx context.Context, actor user.Principal, projectID string) (*ProjectSummary, error) {
	snap, err := s.snapshot(ctx, actor.TenantID, SnapshotOptions{})
	if err != nil {
		return nil, err
	}

	var proj *project.Project
	for i := range snap.Projects {
		if snap.Projects[i].ID == projectID {
			proj = &snap.Projects[i]
			break
		}
	}
	if proj == nil {
		return nil, ErrProjectNotFound
	}

	tasks := groupTasks(snap.Tasks)[proj.ID]
	if err := authorizeProject(actor, tasks); err != nil {
		return nil, err
	}

	var seconds int64
	byUser := make(map[string]float64)
	for _, w := range snap.WorkLogs {
		if w.ProjectID != proj.ID {
			continue
		}
		secs := DurationSeconds(w)
		seconds += secs
		byUser[w.UserID] += Hours(secs)
	}

	return &ProjectSummary{
		ProjectOverview: ProjectOverview{
			Project: *proj,
			Seconds: seconds,
			Hours:   Hours(seconds),
			Tasks:   CountStatuses(tasks),
		},
		HoursByUser: byUser,
	}, nil
}

// TeamProductivity returns per-user hours inside the timeframe together with
// each user's overdue task count.
func (s *Service) TeamProductivity(ctx context.Context, actor user.Principal, tf Timeframe) (*TeamReport, error) {
	if !actor.Role.CanViewReports() {
		return nil, user.ErrForbidden
	}
	now := s.clock()
	from := tf.Start(now)
	snap, err := s.snapshot(ctx, actor.TenantID, SnapshotOptions{From: &from, To: &now})
	if err != nil {
		return nil, err
	}

	totals := UserTotals(snap.WorkLogs, snap.Tasks, from, now)
	overdue := Overdue(snap.Tasks, now)

	users := make([]UserTotal, 0, len(snap.Users))
	for _, u := range snap.Users {
		ut, ok := totals[u.ID]
		if !ok {
			ut = &UserTotal{UserID: u.ID, ByProject: map[string]float64{}, ByTaskType: map[string]float64{}}
		}
		ut.Name = u.Name
		ut.Overdue = overdue[u.ID]
		users = append(users, *ut)
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].Seconds > users[j].Seconds })

	return &TeamReport{Timeframe: tf, From: from, To: now, Users: users}, nil
}

// TaskAnalytics returns tenant-wide status counts and the completion trend.
func (s *Service) TaskAnalytics(ctx context.Context, actor user.Principal) (*TaskAnalytics, error) {
	if !actor.Role.CanViewReports() {
		return nil, user.ErrForbidden
	}
	snap, err := s.snapshot(ctx, actor.TenantID, SnapshotOptions{})
	if err != nil {
		return nil, err
	}
	return &TaskAnalytics{
		Counts: CountStatuses(snap.Tasks),
		Trend:  CompletionTrend(snap.Tasks, s.clock(), TrendDays),
	}, nil
}

// TimeReport lists every work log inside [from, to] with names resolved.
func (s *Service) TimeReport(ctx context.Context, actor user.Principal, from, to time.Time) (*TimeReport, error) {
	if !actor.Role.CanViewReports() {
		return nil, user.ErrForbidden
	}
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return nil, fmt.Errorf("%w: to must be after from", ErrInvalidInput)
	}
	snap, err := s.snapshot(ctx, actor.TenantID, SnapshotOptions{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	users := make(map[string]string, len(snap.Users))
	for _, u := range snap.Users {
		users[u.ID] = u.Name
	}
	projects := make(map[string]string, len(snap.Projects))
	for _, p := range snap.Projects {
		projects[p.ID] = p.Name
	}
	tasks := make(map[string]task.Task, len(snap.Tasks))
	for _, t := range snap.Tasks {
		tasks[t.ID] = t
	}

	rep := &TimeReport{From: from, To: to, Rows: make([]TimeRow, 0, len(snap.WorkLogs))}
	for _, w := range snap.WorkLogs {
		if w.StartTime.Before(from) || w.EndTime.After(to) {
			continue
		}
		rep.Rows = append(rep.Rows, timeRow(w, users, projects, tasks))
		rep.TotalSeconds += DurationSeconds(w)
	}
	sort.SliceStable(rep.Rows, func(i, j int) bool { return rep.Rows[i].StartTime.Before(rep.Rows[j].StartTime) })
	rep.TotalHours = Hours(rep.TotalSeconds)
	return rep, nil
}

// OverdueCounts returns, per assignee, the tenant's overdue task count. It
// serves background jobs, which run without a caller.
func (s *Service) OverdueCounts(ctx context.Context, tenantID string) (map[string]int, error) {
	snap, err := s.snapshot(ctx, tenantID, SnapshotOptions{SkipWorkLogs: true})
	if err != nil {
		return nil, err
	}
	return Overdue(snap.Tasks, s.clock()), nil
}

func (s *Service) snapshot(ctx context.Context, tenantID string, opts SnapshotOptions) (*Snapshot, error) {
	snap, err := s.snapshots.Snapshot(ctx, tenantID, opts)
	if err != nil {
		return nil, fmt.Errorf("reading report snapshot: %w", err)
	}
	return snap, nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func timeRow(w worklog.WorkLog, users, projects map[string]string, tasks map[string]task.Task) TimeRow {
	secs := DurationSeconds(w)
	row := TimeRow{
		WorkLogID:   w.ID,
		UserID:      w.UserID,
		UserName:    users[w.UserID],
		ProjectID:   w.ProjectID,
		ProjectName: projects[w.ProjectID],
		TaskID:      w.TaskID,
		TaskType:    unknownTaskType,
		StartTime:   w.StartTime,
		EndTime:     w.EndTime,
		Seconds:     secs,
		Hours:       Hours(secs),
	}
	if t, ok := tasks[w.TaskID]; ok {
		row.TaskName = t.Name
		row.TaskType = t.Type
	}
	if w.Note != nil {
		row.Note = *w.Note
	}
	return row
}

func groupTasks(tasks []task.Task) map[string][]task.Task {
	grouped := make(map[string][]task.Task)
	for _, t := range tasks {
		grouped[t.ProjectID] = append(grouped[t.ProjectID], t)
	}
	return grouped
}

func authorizeProject(actor user.Principal, tasks []task.Task) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleMember:
		for i := range tasks {
			if tasks[i].AssignedTo(actor.UserID) {
				return nil
			}
		}
		return user.ErrForbidden
	default:
		return user.ErrForbidden
	}
}
