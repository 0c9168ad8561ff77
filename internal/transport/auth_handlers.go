package transport

import (
	"net/http"
	"strings"

	"github.com/ganot/taskhours/internal/domain/user"
)

type signupRequest struct {
	Tenant         string  `json:"tenant"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Role           string  `json:"role"`
	Rank           *string `json:"rank"`
	Specialization *string `json:"specialization"`
}

type loginRequest struct {
	Tenant   string `json:"tenant"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	role := req.Role
	if strings.TrimSpace(role) == "" {
		role = string(user.RoleMember)
	}

	u, err := s.svc.Users.Signup(r.Context(), user.SignupRequest{
		TenantID:       req.Tenant,
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           role,
		Rank:           req.Rank,
		Specialization: req.Specialization,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	_, token, err := s.svc.Users.Login(r.Context(), u.TenantID, u.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.cookie.set(w, token)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	u, token, err := s.svc.Users.Login(r.Context(), req.Tenant, req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.cookie.set(w, token)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.Logout(r.Context(), sessionToken(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	s.cookie.clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	u, err := s.svc.Users.Get(r.Context(), p.TenantID, p.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.List(r.Context(), principal(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
