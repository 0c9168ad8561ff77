package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/user"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type emptyInput struct{}

type startTimerInput struct {
	TaskID string `json:"task_id" jsonschema:"ID of the task to track"`
}

type stopTimerInput struct {
	Note string `json:"note,omitempty" jsonschema:"optional note stored on the work log"`
}

type projectSummaryInput struct {
	ProjectID string `json:"project_id" jsonschema:"project ID"`
}

type teamProductivityInput struct {
	Timeframe string `json:"timeframe,omitempty" jsonschema:"day, week or month; defaults to week"`
}

type projectList struct {
	Projects []project.Project `json:"projects"`
}

type taskList struct {
	Tasks []task.Task `json:"tasks"`
}

type cancelResult struct {
	Cancelled bool `json:"cancelled"`
}

// toolFunc is a tool body that runs on behalf of an authenticated caller.
type toolFunc[In any] func(ctx context.Context, actor user.Principal, in In) (any, error)

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List the projects visible to the caller",
	}, func(ctx context.Context, actor user.Principal, _ emptyInput) (any, error) {
		projects, err := svc.Projects.List(ctx, actor)
		if err != nil {
			return nil, err
		}
		return projectList{Projects: projects}, nil
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "list_my_tasks",
		Description: "List the tasks assigned to the caller",
	}, func(ctx context.Context, actor user.Principal, _ emptyInput) (any, error) {
		tasks, err := svc.Tasks.ListMine(ctx, actor)
		if err != nil {
			return nil, err
		}
		return taskList{Tasks: tasks}, nil
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "get_timer",
		Description: "Get the caller's active work session and its elapsed seconds",
	}, func(ctx context.Context, actor user.Principal, _ emptyInput) (any, error) {
		return svc.Timer.Get(ctx, actor)
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "start_timer",
		Description: "Start tracking time on a task. Returns the existing session unchanged if one is active on another task",
	}, func(ctx context.Context, actor user.Principal, in startTimerInput) (any, error) {
		if strings.TrimSpace(in.TaskID) == "" {
			return nil, &APIError{Code: "INVALID_INPUT", Message: "task_id is required"}
		}
		return svc.Timer.Start(ctx, actor, in.TaskID)
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "pause_timer",
		Description: "Pause the running work session",
	}, func(ctx context.Context, actor user.Principal, _ emptyInput) (any, error) {
		return svc.Timer.Pause(ctx, actor)
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "resume_timer",
		Description: "Resume the paused work session",
	}, func(ctx context.Context, actor user.Principal, _ emptyInput) (any, error) {
		return svc.Timer.Resume(ctx, actor)
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "stop_timer",
		Description: "Stop the work session and record a work log",
	}, func(ctx context.Context, actor user.Principal, in stopTimerInput) (any, error) {
		var note *string
		if in.Note != "" {
			note = &in.Note
		}
		return svc.Timer.Stop(ctx, actor, note)
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "cancel_timer",
		Description: "Discard the work session without recording a work log",
	}, func(ctx context.Context, actor user.Principal, _ emptyInput) (any, error) {
		if err := svc.Timer.Cancel(ctx, actor); err != nil {
			return nil, err
		}
		return cancelResult{Cancelled: true}, nil
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "project_summary",
		Description: "Hours logged and task status counts for one project",
	}, func(ctx context.Context, actor user.Principal, in projectSummaryInput) (any, error) {
		return svc.Reports.ProjectSummary(ctx, actor, in.ProjectID)
	})

	addTool(server, logger, &sdkmcp.Tool{
		Name:        "team_productivity",
		Description: "Hours per user by project and task type, with overdue task counts. Admin only",
	}, func(ctx context.Context, actor user.Principal, in teamProductivityInput) (any, error) {
		tf, err := report.ParseTimeframe(in.Timeframe)
		if err != nil {
			return nil, err
		}
		return svc.Reports.TeamProductivity(ctx, actor, tf)
	})
}

func addTool[In any](server *sdkmcp.Server, logger *slog.Logger, tool *sdkmcp.Tool, fn toolFunc[In]) {
	sdkmcp.AddTool(server, tool, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		actor, ok := getPrincipal(ctx)
		if !ok {
			return errorResult(MapError(user.ErrUnauthenticated)), nil, nil
		}
		out, err := fn(ctx, actor, in)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return errorResult(apiErr), nil, nil
			}
			if mapped := MapError(err); mapped != nil {
				return errorResult(mapped), nil, nil
			}
			logger.Error("mcp tool failed", "tool", tool.Name, "tenant_id", actor.TenantID, "error", err)
			return nil, nil, fmt.Errorf("%s failed", tool.Name)
		}
		return jsonResult(out)
	})
}

func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(apiErr *APIError) *sdkmcp.CallToolResult {
	data, err := json.Marshal(apiErr)
	if err != nil {
		data = []byte(apiErr.Error())
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
