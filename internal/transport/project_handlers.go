package transport

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/go-chi/chi/v5"
)

type createProjectRequest struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Status   string  `json:"status"`
	Deadline *string `json:"deadline"`
}

// updateProjectRequest is a partial update. An empty deadline clears it.
type updateProjectRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	Status   *string `json:"status"`
	Deadline *string `json:"deadline"`
}

type createTaskRequest struct {
	ProjectID     string   `json:"project_id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	AssigneeID    *string  `json:"assignee_id"`
	EstimateHours *float64 `json:"estimate_hours"`
}

// updateTaskRequest is a partial update. An empty assignee_id unassigns.
type updateTaskRequest struct {
	Name          *string  `json:"name"`
	Type          *string  `json:"type"`
	Status        *string  `json:"status"`
	AssigneeID    *string  `json:"assignee_id"`
	EstimateHours *float64 `json:"estimate_hours"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.Projects.List(r.Context(), principal(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	proj, err := s.svc.Projects.Create(r.Context(), principal(r), project.CreateRequest{
		Name:     req.Name,
		Type:     req.Type,
		Status:   project.Status(req.Status),
		Deadline: deadline,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.svc.Projects.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	update := project.UpdateRequest{Name: req.Name, Type: req.Type}
	if req.Status != nil {
		status := project.Status(*req.Status)
		update.Status = &status
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			update.ClearDeadline = true
		} else {
			deadline, err := parseDeadline(req.Deadline)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			update.Deadline = deadline
		}
	}

	proj, err := s.svc.Projects.Update(r.Context(), principal(r), chi.URLParam(r, "id"), update)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleArchiveProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.svc.Projects.Archive(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleListProjectTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Tasks.ListByProject(r.Context(), principal(r), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.svc.Tasks.Create(r.Context(), principal(r), task.CreateRequest{
		ProjectID:     req.ProjectID,
		Name:          req.Name,
		Type:          req.Type,
		Status:        task.Status(req.Status),
		AssigneeID:    req.AssigneeID,
		EstimateHours: req.EstimateHours,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleListMyTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.Tasks.ListMine(r.Context(), principal(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	update := task.UpdateRequest{
		Name:          req.Name,
		Type:          req.Type,
		EstimateHours: req.EstimateHours,
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		update.Status = &status
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == "" {
			update.ClearAssignee = true
		} else {
			update.AssigneeID = req.AssigneeID
		}
	}

	t, err := s.svc.Tasks.Update(r.Context(), principal(r), chi.URLParam(r, "id"), update)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tasks.Delete(r.Context(), principal(r), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseDeadline(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := time.Parse(project.DeadlineLayout, *value)
	if err != nil {
		return nil, fmt.Errorf("%w: deadline must be YYYY-MM-DD", project.ErrInvalidInput)
	}
	return &d, nil
}
