package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/ganot/taskhours/internal/repository"
	"github.com/google/uuid"
)

// Service drives the Idle -> Running <-> Paused -> Idle work session state
// machine and turns stopped sessions into work logs.
type Service struct {
	sessions   Repository
	tasks      TaskReader
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new timer service.
func NewService(sessions Repository, tasks TaskReader, activities ActivityRepository, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		sessions:   sessions,
		tasks:      tasks,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the caller's current session, if any, with its elapsed time.
func (s *Service) Get(ctx context.Context, actor user.Principal) (*Status, error) {
	sess, err := s.active(ctx, actor)
	if errors.Is(err, ErrNoActiveSession) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Status{
		Active:         true,
		Session:        sess,
		ElapsedSeconds: int64(sess.Elapsed(s.clock()).Seconds()),
	}, nil
}

// Start begins timing taskID. A session on another task is left untouched and
// returned with Started=false; a paused session on the same task resumes.
func (s *Service) Start(ctx context.Context, actor user.Principal, taskID string) (*StartResult, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("%w: task_id is required", ErrInvalidInput)
	}

	existing, err := s.active(ctx, actor)
	switch {
	case err == nil:
		if existing.TaskID != taskID {
			return &StartResult{Session: existing, Started: false}, nil
		}
		if existing.State == StatePaused {
			resumed, err := s.resume(ctx, existing)
			if err != nil {
				return nil, err
			}
			return &StartResult{Session: resumed, Started: true}, nil
		}
		return &StartResult{Session: existing, Started: false}, nil
	case !errors.Is(err, ErrNoActiveSession):
		return nil, err
	}

	t, err := s.tasks.Get(ctx, actor.TenantID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("loading task: %w", err)
	}
	if err := authorizeTask(actor, t); err != nil {
		return nil, err
	}

	sess := &Session{
		TenantID:  actor.TenantID,
		UserID:    actor.UserID,
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		State:     StateRunning,
		StartedAt: s.clock(),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost a race with a concurrent start: report the winner.
			winner, getErr := s.active(ctx, actor)
			if getErr != nil {
				return nil, getErr
			}
			return &StartResult{Session: winner, Started: false}, nil
		}
		return nil, fmt.Errorf("creating session: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, actor.TenantID, &activity.ActivityEntry{
		ProjectID:    activity.Ref(t.ProjectID),
		TaskID:       activity.Ref(t.ID),
		ActorID:      activity.Ref(actor.UserID),
		ActivityType: activity.TypeTimerStarted,
		Summary:      fmt.Sprintf("Timer started on %q", t.Name),
	})
	return &StartResult{Session: sess, Started: true}, nil
}

// Pause freezes the visible elapsed time. The start time is kept.
func (s *Service) Pause(ctx context.Context, actor user.Principal) (*Session, error) {
	sess, err := s.active(ctx, actor)
	if err != nil {
		return nil, err
	}
	if sess.State != StateRunning {
		return nil, ErrNotRunning
	}
	return s.pause(ctx, sess)
}

// Resume continues a paused session.
func (s *Service) Resume(ctx context.Context, actor user.Principal) (*Session, error) {
	sess, err := s.active(ctx, actor)
	if err != nil {
		return nil, err
	}
	if sess.State != StatePaused {
		return nil, ErrNotPaused
	}
	return s.resume(ctx, sess)
}

// Stop converts the active session into a work log ending now. When the log
// cannot be stored the session is kept and the error returned, so the caller
// can stop again.
func (s *Service) Stop(ctx context.Context, actor user.Principal, note *string) (*worklog.WorkLog, error) {
	sess, err := s.active(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	log := &worklog.WorkLog{
		ID:        uuid.NewString(),
		TenantID:  sess.TenantID,
		UserID:    sess.UserID,
		ProjectID: sess.ProjectID,
		TaskID:    sess.TaskID,
		StartTime: sess.StartedAt,
		EndTime:   now,
		Note:      trimmedNote(note),
		CreatedAt: now,
	}
	if log.Seconds() < 1 {
		return nil, ErrNothingToLog
	}
	if err := log.Validate(); err != nil {
		return nil, err
	}

	if err := s.sessions.CommitStop(ctx, sess, log); err != nil {
		s.log().Error("failed to persist work log",
			"tenant_id", sess.TenantID, "user_id", sess.UserID, "task_id", sess.TaskID, "error", err)
		return nil, fmt.Errorf("persisting work log: %w", err)
	}

	activity.Record(ctx, s.activities, s.logger, actor.TenantID, &activity.ActivityEntry{
		ProjectID:    activity.Ref(log.ProjectID),
		TaskID:       activity.Ref(log.TaskID),
		ActorID:      activity.Ref(actor.UserID),
		ActivityType: activity.TypeWorkLogRecorded,
		Summary:      fmt.Sprintf("Logged %s", time.Duration(log.Seconds())*time.Second),
		Details:      activity.Details(map[string]string{"work_log_id": log.ID}),
	})
	return log, nil
}

// Cancel discards the active session without logging it.
func (s *Service) Cancel(ctx context.Context, actor user.Principal) error {
	if err := s.sessions.Delete(ctx, actor.TenantID, actor.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// PauseStale pauses sessions that have been running without a break since
// before cutoff and returns how many were paused. A session resumed after the
// cutoff is left alone.
func (s *Service) PauseStale(ctx context.Context, cutoff time.Time) (int, error) {
	stale, err := s.sessions.ListRunningBefore(ctx, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("listing running sessions: %w", err)
	}

	paused := 0
	for i := range stale {
		sess := &stale[i]
		if !sess.LastRunStart().Before(cutoff) {
			continue
		}
		if _, err := s.pause(ctx, sess); err != nil {
			if errors.Is(err, ErrNoActiveSession) {
				continue
			}
			return paused, err
		}
		paused++
		activity.Record(ctx, s.activities, s.logger, sess.TenantID, &activity.ActivityEntry{
			ProjectID:    activity.Ref(sess.ProjectID),
			TaskID:       activity.Ref(sess.TaskID),
			ActorID:      activity.Ref(sess.UserID),
			ActivityType: activity.TypeTimerAutoPaused,
			Summary:      "Timer paused after running unattended",
		})
	}
	return paused, nil
}

func (s *Service) pause(ctx context.Context, sess *Session) (*Session, error) {
	at := s.clock()
	sess.State = StatePaused
	sess.PausedAt = &at
	if err := s.update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) resume(ctx context.Context, sess *Session) (*Session, error) {
	at := s.clock()
	sess.State = StateRunning
	sess.PausedAt = nil
	sess.ResumedAt = &at
	if err := s.update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) update(ctx context.Context, sess *Session) error {
	if err := s.sessions.Update(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoActiveSession
		}
		return fmt.Errorf("updating session: %w", err)
	}
	return nil
}

func (s *Service) active(ctx context.Context, actor user.Principal) (*Session, error) {
	sess, err := s.sessions.Get(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func (s *Service) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// authorizeTask allows admins to time any task and members only their own.
func authorizeTask(actor user.Principal, t *task.Task) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleMember:
		if t.AssignedTo(actor.UserID) {
			return nil
		}
		return user.ErrForbidden
	default:
		return user.ErrForbidden
	}
}

func trimmedNote(note *string) *string {
	if note == nil {
		return nil
	}
	v := strings.TrimSpace(*note)
	if v == "" {
		return nil
	}
	return &v
}
