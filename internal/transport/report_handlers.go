package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/go-chi/chi/v5"
)

const defaultTimeReportWindow = 7 * 24 * time.Hour

func (s *Server) handleProjectOverview(w http.ResponseWriter, r *http.Request) {
	var status *project.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := project.ParseStatus(raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		status = &parsed
	}
	rows, err := s.svc.Reports.ProjectOverview(r.Context(), principal(r), status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleProjectSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Reports.ProjectSummary(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTeamProductivity(w http.ResponseWriter, r *http.Request) {
	tf, err := report.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := s.svc.Reports.TeamProductivity(r.Context(), principal(r), tf)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleTaskAnalytics(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Reports.TaskAnalytics(r.Context(), principal(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleTimeReport serves work logs between from and to. Dates are RFC 3339
// timestamps or YYYY-MM-DD; a date-only "to" includes that whole day.
func (s *Server) handleTimeReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to := time.Now().UTC()
	if raw := q.Get("to"); raw != "" {
		parsed, dateOnly, err := parseTimeParam(raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		to = parsed
		if dateOnly {
			to = to.AddDate(0, 0, 1)
		}
	}
	from := to.Add(-defaultTimeReportWindow)
	if raw := q.Get("from"); raw != "" {
		parsed, _, err := parseTimeParam(raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		from = parsed
	}

	rep, err := s.svc.Reports.TimeReport(r.Context(), principal(r), from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	switch q.Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, rep)
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="time-report-%s-%s.csv"`,
			from.Format("20060102"), to.Format("20060102")))
		w.WriteHeader(http.StatusOK)
		if err := report.WriteCSV(w, rep); err != nil {
			s.logger.Error("writing csv report", "error", err)
		}
	default:
		writeMessage(w, http.StatusBadRequest, "format must be json or csv")
	}
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intQuery(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	offset, err := intQuery(r, "offset")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts := activity.ListActivityOptions{
		ProjectID: optionalQuery(q.Get("project_id")),
		TaskID:    optionalQuery(q.Get("task_id")),
		ActorID:   optionalQuery(q.Get("actor_id")),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := q.Get("type"); raw != "" {
		typ := activity.ActivityType(raw)
		opts.ActivityType = &typ
	}

	entries, err := s.svc.Activity.GetRecentActivity(r.Context(), principal(r).TenantID, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func parseTimeParam(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: invalid time %q", errBadRequest, raw)
}

func optionalQuery(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
