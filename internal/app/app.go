package app

import (
	"log/slog"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/ganot/taskhours/internal/mcp"
	"github.com/ganot/taskhours/internal/scheduler"
	"github.com/ganot/taskhours/internal/sqlite"
	"github.com/ganot/taskhours/internal/transport"
)

// App holds every domain service backed by one database.
type App struct {
	DB       *sqlite.DB
	Users    *user.Service
	Projects *project.Service
	Tasks    *task.Service
	Timer    *timer.Service
	WorkLogs *worklog.Service
	Reports  *report.Service
	Activity *activity.Service
}

// Options tunes service construction.
type Options struct {
	Logger     *slog.Logger
	SessionTTL time.Duration
	// HashCost overrides the bcrypt cost; zero keeps the default.
	HashCost int
	// Clock overrides time.Now for every service.
	Clock func() time.Time
}

// New wires repositories and services on top of db.
func New(db *sqlite.DB, opts Options) *App {
	logger := opts.Logger

	userRepo := sqlite.NewUserRepository(db)
	sessionRepo := sqlite.NewAuthSessionRepository(db)
	keyRepo := sqlite.NewAPIKeyRepository(db)
	projectRepo := sqlite.NewProjectRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	timerRepo := sqlite.NewTimerRepository(db)
	worklogRepo := sqlite.NewWorkLogRepository(db)
	reportRepo := sqlite.NewReportRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)

	userOpts := []user.Option{user.WithSessionTTL(opts.SessionTTL)}
	if opts.HashCost > 0 {
		userOpts = append(userOpts, user.WithHashCost(opts.HashCost))
	}
	var timerOpts []timer.Option
	var reportOpts []report.Option
	if opts.Clock != nil {
		userOpts = append(userOpts, user.WithClock(opts.Clock))
		timerOpts = append(timerOpts, timer.WithClock(opts.Clock))
		reportOpts = append(reportOpts, report.WithClock(opts.Clock))
	}

	return &App{
		DB:       db,
		Users:    user.NewService(userRepo, sessionRepo, keyRepo, logger, userOpts...),
		Projects: project.NewService(projectRepo, activityRepo, logger),
		Tasks:    task.NewService(taskRepo, projectRepo, userRepo, activityRepo, logger),
		Timer:    timer.NewService(timerRepo, taskRepo, activityRepo, logger, timerOpts...),
		WorkLogs: worklog.NewService(worklogRepo),
		Reports:  report.NewService(reportRepo, reportOpts...),
		Activity: activity.NewService(activityRepo, logger),
	}
}

// HTTPServices returns the services the REST API needs.
func (a *App) HTTPServices() transport.Services {
	return transport.Services{
		Users:    a.Users,
		Projects: a.Projects,
		Tasks:    a.Tasks,
		Timer:    a.Timer,
		WorkLogs: a.WorkLogs,
		Reports:  a.Reports,
		Activity: a.Activity,
	}
}

// MCPServices returns the services exposed as MCP tools.
func (a *App) MCPServices() mcp.Services {
	return mcp.Services{
		Projects: a.Projects,
		Tasks:    a.Tasks,
		Timer:    a.Timer,
		Reports:  a.Reports,
	}
}

// SchedulerJobs returns the services driven by background jobs.
func (a *App) SchedulerJobs() scheduler.Jobs {
	return scheduler.Jobs{
		Timers:   a.Timer,
		Tenants:  a.Users,
		Overdue:  a.Reports,
		Activity: a.Activity,
		Sessions: a.Users,
	}
}
