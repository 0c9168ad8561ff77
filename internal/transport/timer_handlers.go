package transport

import (
	"fmt"
	"net/http"
	"strconv"
)

type startTimerRequest struct {
	TaskID string `json:"task_id"`
}

type stopTimerRequest struct {
	Note *string `json:"note"`
}

func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Timer.Get(r.Context(), principal(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleStartTimer answers 201 when a session was started and 200 when the
// caller already had one, which is returned unchanged.
func (s *Server) handleStartTimer(w http.ResponseWriter, r *http.Request) {
	var req startTimerRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.svc.Timer.Start(r.Context(), principal(r), req.TaskID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Started {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (s *Server) handlePauseTimer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Timer.Pause(r.Context(), principal(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleResumeTimer(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Timer.Resume(r.Context(), principal(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleStopTimer(w http.ResponseWriter, r *http.Request) {
	var req stopTimerRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	log, err := s.svc.Timer.Stop(r.Context(), principal(r), req.Note)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (s *Server) handleCancelTimer(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Timer.Cancel(r.Context(), principal(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListMyWorkLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	logs, err := s.svc.WorkLogs.ListMine(r.Context(), principal(r), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, name)
	}
	return v, nil
}
