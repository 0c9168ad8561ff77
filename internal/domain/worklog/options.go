package worklog

import "time"

// ListOptions filters work log listings. Zero values are ignored.
type ListOptions struct {
	UserID    *string
	ProjectID *string
	// From and To bound the log window: start_time >= From, end_time <= To.
	From  *time.Time
	To    *time.Time
	Limit int
}
