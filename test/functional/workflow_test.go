package functional_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ganot/taskhours/internal/domain/activity"
	"github.com/ganot/taskhours/internal/domain/project"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/task"
	"github.com/ganot/taskhours/internal/domain/timer"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/ganot/taskhours/internal/domain/worklog"
	"github.com/ganot/taskhours/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

type team struct {
	admin, member         *testserver.Client
	adminUser, memberUser user.User
}

func signupTeam(t *testing.T, ts *testserver.TestServer) team {
	t.Helper()
	var tm team
	tm.admin = ts.NewClient(t)
	tm.admin.JSON(http.MethodPost, "/api/auth/signup", map[string]any{
		"tenant": "acme", "name": "Ada", "email": "ada@acme.io", "password": "s3cret!", "role": "admin",
	}, http.StatusCreated, &tm.adminUser)

	tm.member = ts.NewClient(t)
	tm.member.JSON(http.MethodPost, "/api/auth/signup", map[string]any{
		"tenant": "acme", "name": "Bob", "email": "bob@acme.io", "password": "hunter22",
	}, http.StatusCreated, &tm.memberUser)
	require.Equal(t, user.RoleMember, tm.memberUser.Role)
	return tm
}

func TestFunctional_TrackTimeOverHTTP(t *testing.T) {
	ts := testserver.New(t)
	tm := signupTeam(t, ts)

	var proj project.Project
	tm.admin.JSON(http.MethodPost, "/api/projects", map[string]any{
		"name": "Website", "type": "Web", "deadline": "2026-03-31",
	}, http.StatusCreated, &proj)
	require.Equal(t, project.StatusInProgress, proj.Status)

	// Members cannot create projects.
	status, _ := tm.member.Do(http.MethodPost, "/api/projects", map[string]any{"name": "Nope", "type": "Web"})
	require.Equal(t, http.StatusForbidden, status)

	var tk task.Task
	tm.admin.JSON(http.MethodPost, "/api/tasks", map[string]any{
		"project_id": proj.ID, "name": "Landing page", "type": "Design", "assignee_id": tm.memberUser.ID,
	}, http.StatusCreated, &tk)

	var mine []task.Task
	tm.member.JSON(http.MethodGet, "/api/tasks/mine", nil, http.StatusOK, &mine)
	require.Len(t, mine, 1)

	var visible []project.Project
	tm.member.JSON(http.MethodGet, "/api/projects", nil, http.StatusOK, &visible)
	require.Len(t, visible, 1)
	require.Equal(t, proj.ID, visible[0].ID)

	var started timer.StartResult
	tm.member.JSON(http.MethodPost, "/api/timer/start", map[string]any{"task_id": tk.ID}, http.StatusCreated, &started)
	require.True(t, started.Started)

	ts.Clock.Advance(30 * time.Minute)
	var paused timer.Session
	tm.member.JSON(http.MethodPost, "/api/timer/pause", nil, http.StatusOK, &paused)
	require.Equal(t, timer.StatePaused, paused.State)

	ts.Clock.Advance(15 * time.Minute)
	tm.member.JSON(http.MethodPost, "/api/timer/resume", nil, http.StatusOK, &paused)
	require.Equal(t, timer.StateRunning, paused.State)

	ts.Clock.Advance(45 * time.Minute)
	var st timer.Status
	tm.member.JSON(http.MethodGet, "/api/timer", nil, http.StatusOK, &st)
	require.True(t, st.Active)
	require.EqualValues(t, 90*60, st.ElapsedSeconds)

	var log worklog.WorkLog
	tm.member.JSON(http.MethodPost, "/api/timer/stop", map[string]any{"note": "hero section"}, http.StatusCreated, &log)
	require.Equal(t, 90*time.Minute, log.EndTime.Sub(log.StartTime))
	require.Equal(t, proj.ID, log.ProjectID)

	status, _ = tm.member.Do(http.MethodPost, "/api/timer/stop", nil)
	require.Equal(t, http.StatusNotFound, status)

	var logs []worklog.WorkLog
	tm.member.JSON(http.MethodGet, "/api/worklogs/mine", nil, http.StatusOK, &logs)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].Note)
	require.Equal(t, "hero section", *logs[0].Note)

	var summary report.ProjectSummary
	tm.admin.JSON(http.MethodGet, "/api/projects/"+proj.ID+"/summary", nil, http.StatusOK, &summary)
	require.InDelta(t, 1.5, summary.Hours, 0.001)
	require.InDelta(t, 1.5, summary.HoursByUser[tm.memberUser.ID], 0.001)

	var teamReport report.TeamReport
	tm.admin.JSON(http.MethodGet, "/api/reports/team?timeframe=day", nil, http.StatusOK, &teamReport)
	require.Len(t, teamReport.Users, 2)
	require.Equal(t, tm.memberUser.ID, teamReport.Users[0].UserID)
	require.InDelta(t, 1.5, teamReport.Users[0].ByTaskType["Design"], 0.001)

	status, _ = tm.member.Do(http.MethodGet, "/api/reports/team", nil)
	require.Equal(t, http.StatusForbidden, status)

	status, body := tm.admin.Do(http.MethodGet, "/api/reports/time?from=2026-03-02&to=2026-03-02&format=csv", nil)
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), "Landing page")

	var entries []activity.ActivityEntry
	tm.admin.JSON(http.MethodGet, "/api/activity?type=worklog_recorded", nil, http.StatusOK, &entries)
	require.Len(t, entries, 1)

	// The task has logged time, so deleting it conflicts.
	status, _ = tm.admin.Do(http.MethodDelete, "/api/tasks/"+tk.ID, nil)
	require.Equal(t, http.StatusConflict, status)
}

func TestFunctional_SignupCannotClaimAdminOfExistingTenant(t *testing.T) {
	ts := testserver.New(t)
	signupTeam(t, ts)

	outsider := ts.NewClient(t)
	status, _ := outsider.Do(http.MethodPost, "/api/auth/signup", map[string]any{
		"tenant": "acme", "name": "Eve", "email": "eve@evil.io", "password": "hunter22", "role": "admin",
	})
	require.Equal(t, http.StatusForbidden, status)

	// No session was issued and no account was created.
	status, _ = outsider.Do(http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	status, _ = outsider.Do(http.MethodPost, "/api/auth/login", map[string]any{
		"tenant": "acme", "email": "eve@evil.io", "password": "hunter22",
	})
	require.Equal(t, http.StatusUnauthorized, status)

	// The first account of a new tenant becomes its admin.
	founder := ts.NewClient(t)
	var u user.User
	founder.JSON(http.MethodPost, "/api/auth/signup", map[string]any{
		"tenant": "globex", "name": "Gus", "email": "gus@globex.io", "password": "hunter22", "role": "admin",
	}, http.StatusCreated, &u)
	require.Equal(t, user.RoleAdmin, u.Role)

	var users []user.User
	founder.JSON(http.MethodGet, "/api/users", nil, http.StatusOK, &users)
	require.Len(t, users, 1)
}

func TestFunctional_LogoutEndsSession(t *testing.T) {
	ts := testserver.New(t)
	tm := signupTeam(t, ts)

	var me user.User
	tm.member.JSON(http.MethodGet, "/api/auth/me", nil, http.StatusOK, &me)
	require.Equal(t, tm.memberUser.ID, me.ID)

	status, _ := tm.member.Do(http.MethodPost, "/api/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, status)

	status, _ = tm.member.Do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	tm.member.JSON(http.MethodPost, "/api/auth/login", map[string]any{
		"tenant": "acme", "email": "BOB@acme.io", "password": "hunter22",
	}, http.StatusOK, &me)
	tm.member.JSON(http.MethodGet, "/api/auth/me", nil, http.StatusOK, &me)
}

func TestFunctional_MCPRequiresAPIKey(t *testing.T) {
	ts := testserver.New(t)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"list_projects"},"id":1}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// bearerTransport adds an API key to every MCP request.
type bearerTransport struct {
	key string
}

func (b bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.key)
	return http.DefaultTransport.RoundTrip(req)
}

func toolJSON(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any, out any) bool {
	t.Helper()
	result, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text.Text), out), text.Text)
	}
	return result.IsError
}

func TestFunctional_TrackTimeOverMCP(t *testing.T) {
	ts := testserver.New(t)
	tm := signupTeam(t, ts)

	var proj project.Project
	tm.admin.JSON(http.MethodPost, "/api/projects", map[string]any{"name": "Website", "type": "Web"}, http.StatusCreated, &proj)
	var tk task.Task
	tm.admin.JSON(http.MethodPost, "/api/tasks", map[string]any{
		"project_id": proj.ID, "name": "Copy", "type": "Writing", "assignee_id": tm.memberUser.ID,
	}, http.StatusCreated, &tk)

	key, err := ts.App.Users.IssueAPIKey(context.Background(), "acme", tm.memberUser.ID, "agent")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearerTransport{key: key}},
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	var tasks struct {
		Tasks []task.Task `json:"tasks"`
	}
	require.False(t, toolJSON(t, session, "list_my_tasks", map[string]any{}, &tasks))
	require.Len(t, tasks.Tasks, 1)

	var started timer.StartResult
	require.False(t, toolJSON(t, session, "start_timer", map[string]any{"task_id": tk.ID}, &started))
	require.True(t, started.Started)

	var apiErr struct {
		Code string `json:"code"`
	}
	require.True(t, toolJSON(t, session, "stop_timer", map[string]any{}, &apiErr))
	require.Equal(t, "NOTHING_TO_LOG", apiErr.Code)

	ts.Clock.Advance(20 * time.Minute)
	var log worklog.WorkLog
	require.False(t, toolJSON(t, session, "stop_timer", map[string]any{"note": "draft"}, &log))
	require.Equal(t, 20*time.Minute, log.EndTime.Sub(log.StartTime))

	require.True(t, toolJSON(t, session, "team_productivity", map[string]any{}, &apiErr))
	require.Equal(t, "FORBIDDEN", apiErr.Code)

	// The HTTP API sees the log written over MCP.
	var logs []worklog.WorkLog
	tm.member.JSON(http.MethodGet, "/api/worklogs/mine", nil, http.StatusOK, &logs)
	require.Len(t, logs, 1)
}
