package mcp

import (
	"context"
	"log/slog"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	List(ctx context.Context, actor user.Principal) ([]project.Project, error)
}

// TaskService defines task operations needed by MCP.
type TaskService interface {
	ListMine(ctx context.Context, actor user.Principal) ([]task.Task, error)
}

// TimerService defines work session operations needed by MCP.
type TimerService interface {
	Get(ctx context.Context, actor user.Principal) (*timer.Status, error)
	Start(ctx context.Context, actor user.Principal, taskID string) (*timer.StartResult, error)
	Pause(ctx context.Context, actor user.Principal) (*timer.Session, error)
	Resume(ctx context.Context, actor user.Principal) (*timer.Session, error)
	Stop(ctx context.Context, actor user.Principal, note *string) (*worklog.WorkLog, error)
	Cancel(ctx context.Context, actor user.Principal) error
}

// ReportService defines report reads needed by MCP.
type ReportService interface {
	ProjectSummary(ctx context.Context, actor user.Principal, projectID string) (*report.ProjectSummary, error)
	TeamProductivity(ctx context.Context, actor user.Principal, tf report.Timeframe) (*report.TeamReport, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Tasks    TaskService
	Timer    TimerService
	Reports  ReportService
}

// Config contains server configuration.
type Config struct {
	Services Services
	Resolver KeyResolver
	// TransportMode is "stdio" or "http".
	TransportMode string
	// StdioPrincipal is the caller for every stdio request.
	StdioPrincipal user.Principal
	Logger         *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "taskhours",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio serves one local client whose identity is fixed at startup.
	if cfg.TransportMode == "stdio" {
		server.AddReceivingMiddleware(fixedPrincipalMiddleware(cfg.StdioPrincipal))
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Services, cfg.Logger)

	return server
}
