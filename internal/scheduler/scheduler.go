package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/robfig/cron/v3"
)

const jobTimeout = time.Minute

// TimerSweeper pauses forgotten work sessions.
type TimerSweeper interface {
	PauseStale(ctx context.Context, cutoff time.Time) (int, error)
}

// TenantLister enumerates tenants for per-tenant jobs.
type TenantLister interface {
	ListTenants(ctx context.Context) ([]string, error)
}

// OverdueCounter counts overdue tasks per assignee.
type OverdueCounter interface {
	OverdueCounts(ctx context.Context, tenantID string) (map[string]int, error)
}

// ActivityLogger writes activity entries.
type ActivityLogger interface {
	LogActivity(ctx context.Context, tenantID string, entry *activity.ActivityEntry) error
}

// SessionPurger deletes expired login sessions.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Jobs holds the services the scheduled jobs drive.
type Jobs struct {
	Timers   TimerSweeper
	Tenants  TenantLister
	Overdue  OverdueCounter
	Activity ActivityLogger
	Sessions SessionPurger
}

// Options holds cron specs in standard five-field or descriptor form. An
// empty spec disables its job.
type Options struct {
	StaleTimerSpec    string
	OverdueDigestSpec string
	SessionPurgeSpec  string
	// AutoPauseAfter is the age at which a running session counts as stale.
	AutoPauseAfter time.Duration
}

// Scheduler wraps cron-based maintenance jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   Jobs
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New creates a scheduler and registers every enabled job.
func New(jobs Jobs, opts Options, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		jobs:   jobs,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}

	if opts.AutoPauseAfter > 0 {
		if err := s.schedule("pause_stale_timers", opts.StaleTimerSpec, s.PauseStaleTimers); err != nil {
			return nil, err
		}
	}
	if err := s.schedule("overdue_digest", opts.OverdueDigestSpec, s.RecordOverdueDigests); err != nil {
		return nil, err
	}
	if err := s.schedule("purge_sessions", opts.SessionPurgeSpec, s.PurgeSessions); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) schedule(name, spec string, job func(context.Context) error) error {
	if spec == "" {
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s %q: %w", name, spec, err)
	}
	s.logger.Debug("scheduled job", "job", name, "spec", spec)
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// PauseStaleTimers pauses sessions running longer than AutoPauseAfter.
func (s *Scheduler) PauseStaleTimers(ctx context.Context) error {
	if s.opts.AutoPauseAfter <= 0 {
		return nil
	}
	n, err := s.jobs.Timers.PauseStale(ctx, s.now().UTC().Add(-s.opts.AutoPauseAfter))
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("paused stale timers", "count", n)
	}
	return nil
}

// RecordOverdueDigests writes one activity entry per tenant that has
// overdue tasks.
func (s *Scheduler) RecordOverdueDigests(ctx context.Context) error {
	tenants, err := s.jobs.Tenants.ListTenants(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for _, tenantID := range tenants {
		counts, err := s.jobs.Overdue.OverdueCounts(ctx, tenantID)
		if err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		if total == 0 {
			continue
		}
		entry := &activity.ActivityEntry{
			ActivityType: activity.TypeOverdueDigest,
			Summary:      fmt.Sprintf("%d overdue tasks across %d assignees", total, len(counts)),
			Details:      activity.Details(counts),
		}
		if err := s.jobs.Activity.LogActivity(ctx, tenantID, entry); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
	}
	return errors.Join(errs...)
}

// PurgeSessions deletes expired login sessions.
func (s *Scheduler) PurgeSessions(ctx context.Context) error {
	n, err := s.jobs.Sessions.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("purged expired sessions", "count", n)
	}
	return nil
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
