package timer

import "time"

// State is the state of an active work session.
type State string

const (
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// Session is the single in-flight work session a user may own. It lives in
// storage until it is stopped or cancelled, so it survives reloads and
// restarts.
type Session struct {
	TenantID  string     `json:"tenant_id"`
	UserID    string     `json:"user_id"`
	TaskID    string     `json:"task_id"`
	ProjectID string     `json:"project_id"`
	State     State      `json:"state"`
	StartedAt time.Time  `json:"started_at"`
	PausedAt  *time.Time `json:"paused_at,omitempty"`
	ResumedAt *time.Time `json:"resumed_at,omitempty"`
}

// LastRunStart returns when the session last began running: the most recent
// resume, or the start if it was never resumed.
func (s *Session) LastRunStart() time.Time {
	if s.ResumedAt != nil {
		return *s.ResumedAt
	}
	return s.StartedAt
}

// Elapsed returns the wall-clock time since the session started. A paused
// session stops counting at the moment it was paused.
func (s *Session) Elapsed(now time.Time) time.Duration {
	end := now
	if s.State == StatePaused && s.PausedAt != nil {
		end = *s.PausedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}

// Status is the timer view returned to clients.
type Status struct {
	Active         bool     `json:"active"`
	Session        *Session `json:"session,omitempty"`
	ElapsedSeconds int64    `json:"elapsed_seconds"`
}

// StartResult reports the outcome of a start request. Started is false when
// the user already had a session on another task; Session is then that
// existing session.
type StartResult struct {
	Session *Session `json:"session"`
	Started bool     `json:"started"`
}
