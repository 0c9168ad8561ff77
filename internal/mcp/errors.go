package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/user"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, user.ErrUnauthenticated):
		return &APIError{Code: "UNAUTHENTICATED", Message: "not authenticated", RecoveryHint: "Send a valid API key as a bearer token"}
	case errors.Is(err, user.ErrForbidden):
		return &APIError{Code: "FORBIDDEN", Message: "not authorized", RecoveryHint: "This tool needs an admin API key"}
	case errors.Is(err, timer.ErrNoActiveSession):
		return &APIError{Code: "NO_ACTIVE_TIMER", Message: "no active work session", RecoveryHint: "Call start_timer first"}
	case errors.Is(err, timer.ErrNotRunning):
		return &APIError{Code: "TIMER_NOT_RUNNING", Message: "work session is paused", RecoveryHint: "Call resume_timer or stop_timer"}
	case errors.Is(err, timer.ErrNotPaused):
		return &APIError{Code: "TIMER_NOT_PAUSED", Message: "work session is already running", RecoveryHint: "Call pause_timer or stop_timer"}
	case errors.Is(err, timer.ErrNothingToLog):
		return &APIError{Code: "NOTHING_TO_LOG", Message: "work session has no elapsed time yet", RecoveryHint: "Wait a moment and stop again, or call cancel_timer"}
	case errors.Is(err, timer.ErrTaskNotFound), errors.Is(err, task.ErrTaskNotFound):
		return &APIError{Code: "TASK_NOT_FOUND", Message: "task not found", RecoveryHint: "Use list_my_tasks to find task IDs"}
	case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, report.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Use list_projects to find project IDs"}
	case errors.Is(err, report.ErrInvalidInput), errors.Is(err, timer.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error(), RecoveryHint: "Check the tool arguments"}
	default:
		return nil
	}
}
