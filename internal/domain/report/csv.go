package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"work_log_id", "user", "project", "task", "task_type",
	"start_time", "end_time", "seconds", "hours", "note",
}

// WriteCSV writes the report rows as CSV with a header line.
func WriteCSV(w io.Writer, rep *TimeReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range rep.Rows {
		record := []string{
			row.WorkLogID,
			row.UserName,
			row.ProjectName,
			row.TaskName,
			row.TaskType,
			row.StartTime.UTC().Format(time.RFC3339),
			row.EndTime.UTC().Format(time.RFC3339),
			strconv.FormatInt(row.Seconds, 10),
			strconv.FormatFloat(row.Hours, 'f', 2, 64),
			row.Note,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
