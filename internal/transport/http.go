package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserService defines account operations needed by the API.
type UserService interface {
	Authenticator
	Signup(ctx context.Context, req user.SignupRequest) (*user.User, error)
	Login(ctx context.Context, tenantID, email, password string) (*user.User, string, error)
	Logout(ctx context.Context, token string) error
	Get(ctx context.Context, tenantID, id string) (*user.User, error)
	List(ctx context.Context, actor user.Principal) ([]user.User, error)
	SessionTTL() time.Duration
}

// ProjectService defines project operations needed by the API.
type ProjectService interface {
	Create(ctx context.Context, actor user.Principal, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, actor user.Principal, id string) (*project.Project, error)
	List(ctx context.Context, actor user.Principal) ([]project.Project, error)
	Update(ctx context.Context, actor user.Principal, id string, req project.UpdateRequest) (*project.Project, error)
	Archive(ctx context.Context, actor user.Principal, id string) (*project.Project, error)
}

// TaskService defines task operations needed by the API.
type TaskService interface {
	Create(ctx context.Context, actor user.Principal, req task.CreateRequest) (*task.Task, error)
	ListByProject(ctx context.Context, actor user.Principal, projectID string) ([]task.Task, error)
	ListMine(ctx context.Context, actor user.Principal) ([]task.Task, error)
	Update(ctx context.Context, actor user.Principal, id string, req task.UpdateRequest) (*task.Task, error)
	Delete(ctx context.Context, actor user.Principal, id string) error
}

// TimerService defines work session operations needed by the API.
type TimerService interface {
	Get(ctx context.Context, actor user.Principal) (*timer.Status, error)
	Start(ctx context.Context, actor user.Principal, taskID string) (*timer.StartResult, error)
	Pause(ctx context.Context, actor user.Principal) (*timer.Session, error)
	Resume(ctx context.Context, actor user.Principal) (*timer.Session, error)
	Stop(ctx context.Context, actor user.Principal, note *string) (*worklog.WorkLog, error)
	Cancel(ctx context.Context, actor user.Principal) error
}

// WorkLogService defines work log reads needed by the API.
type WorkLogService interface {
	ListMine(ctx context.Context, actor user.Principal, limit int) ([]worklog.WorkLog, error)
}

// ReportService defines dashboard reads needed by the API.
type ReportService interface {
	ProjectOverview(ctx context.Context, actor user.Principal, status *project.Status) ([]report.ProjectOverview, error)
	ProjectSummary(ctx context.Context, actor user.Principal, projectID string) (*report.ProjectSummary, error)
	TeamProductivity(ctx context.Context, actor user.Principal, tf report.Timeframe) (*report.TeamReport, error)
	TaskAnalytics(ctx context.Context, actor user.Principal) (*report.TaskAnalytics, error)
	TimeReport(ctx context.Context, actor user.Principal, from, to time.Time) (*report.TimeReport, error)
}

// ActivityService defines activity reads needed by the API.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, tenantID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains every domain service the API serves.
type Services struct {
	Users    UserService
	Projects ProjectService
	Tasks    TaskService
	Timer    TimerService
	WorkLogs WorkLogService
	Reports  ReportService
	Activity ActivityService
}

// Options configures the HTTP server.
type Options struct {
	Logger       *slog.Logger
	CookieSecure bool
	// MCP, when set, is mounted at /mcp behind bearer API key auth.
	MCP http.Handler
}

// Server wires HTTP handlers.
type Server struct {
	svc    Services
	logger *slog.Logger
	cookie CookieConfig
}

// NewServer creates an HTTP server router with middleware.
func NewServer(svc Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{
		svc:    svc,
		logger: logger,
		cookie: CookieConfig{Secure: opts.CookieSecure, TTL: svc.Users.SessionTTL()},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)

	if opts.MCP != nil {
		r.With(APIKeyMiddleware(svc.Users)).Handle("/mcp", opts.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", srv.handleSignup)
		r.Post("/auth/login", srv.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(svc.Users))
			admin := RequireRole(user.Role.CanManageProjects)
			reports := RequireRole(user.Role.CanViewReports)

			r.Post("/auth/logout", srv.handleLogout)
			r.Get("/auth/me", srv.handleMe)

			r.Get("/projects", srv.handleListProjects)
			r.With(admin).Post("/projects", srv.handleCreateProject)
			r.Get("/projects/{id}", srv.handleGetProject)
			r.With(admin).Patch("/projects/{id}", srv.handleUpdateProject)
			r.With(admin).Post("/projects/{id}/archive", srv.handleArchiveProject)
			r.Get("/projects/{id}/tasks", srv.handleListProjectTasks)
			r.Get("/projects/{id}/summary", srv.handleProjectSummary)

			r.With(admin).Post("/tasks", srv.handleCreateTask)
			r.Get("/tasks/mine", srv.handleListMyTasks)
			r.Patch("/tasks/{id}", srv.handleUpdateTask)
			r.With(admin).Delete("/tasks/{id}", srv.handleDeleteTask)

			r.With(admin).Get("/users", srv.handleListUsers)

			r.Get("/timer", srv.handleGetTimer)
			r.Post("/timer/start", srv.handleStartTimer)
			r.Post("/timer/pause", srv.handlePauseTimer)
			r.Post("/timer/resume", srv.handleResumeTimer)
			r.Post("/timer/stop", srv.handleStopTimer)
			r.Post("/timer/cancel", srv.handleCancelTimer)

			r.Get("/worklogs/mine", srv.handleListMyWorkLogs)

			r.Route("/reports", func(r chi.Router) {
				r.Use(reports)
				r.Get("/projects", srv.handleProjectOverview)
				r.Get("/team", srv.handleTeamProductivity)
				r.Get("/tasks", srv.handleTaskAnalytics)
				r.Get("/time", srv.handleTimeReport)
			})

			r.With(reports).Get("/activity", srv.handleActivity)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// principal returns the authenticated caller. Routes that call it are always
// behind AuthMiddleware.
func principal(r *http.Request) user.Principal {
	p, _ := PrincipalFromContext(r.Context())
	return p
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, s.logger, err)
}

// RequestLogger logs one line per request with its status and latency.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelDebug
			if status >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}
			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
