package task

import "errors"

var (
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrProjectNotFound indicates the parent project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrAssigneeNotFound indicates the assignee is not a user of the tenant.
	ErrAssigneeNotFound = errors.New("assignee not found")
	// ErrInvalidInput indicates invalid task input.
	ErrInvalidInput = errors.New("invalid task input")
	// ErrTaskInUse indicates the task has logged work and cannot be deleted.
	ErrTaskInUse = errors.New("task has logged work")
)
