package timer

import "errors"

var (
	ErrNoActiveSession = errors.New("no active work session")
	ErrNotRunning      = errors.New("work session is not running")
	ErrNotPaused       = errors.New("work session is not paused")
	ErrNothingToLog    = errors.New("work session has no elapsed time to log")
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidInput    = errors.New("invalid input")
)
