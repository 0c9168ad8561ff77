package worklog

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid work log")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
)
