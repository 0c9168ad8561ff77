package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `taskhours tracks time spent on project tasks.

Core concepts:
- Project: groups tasks; owned by an admin.
- Task: one unit of work in a project, optionally assigned to a user.
- Work session (timer): the single in-flight session of the calling user. Running or paused.
- Work log: the immutable record written when a session is stopped.

Default workflow:
1) Orient: list_my_tasks (or list_projects).
2) Track: start_timer(task_id). If a session on another task exists, start_timer returns it unchanged with started=false.
3) Interrupt: pause_timer / resume_timer. Paused time still counts; a log spans start to stop.
4) Finish: stop_timer(note?) writes a work log. A stop within the first second is rejected; the session stays active.
5) Abandon: cancel_timer discards the session without logging.

Admins can also read project_summary and team_productivity.

Docs:
- taskhours://docs/timer (state machine and edge cases)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "taskhours://docs/timer",
		Name:        "docs_timer",
		Title:       "Work session timer",
		Description: "Timer states, transitions and what gets logged.",
		Content: `# Work session timer

States: idle, running, paused. Each user owns at most one session.

| Tool | From | To | Notes |
|---|---|---|---|
| start_timer | idle | running | Same task while paused resumes it. Another task's session blocks: no-op, started=false. |
| pause_timer | running | paused | Keeps the start time. |
| resume_timer | paused | running | |
| stop_timer | running, paused | idle | Writes {start_time, end_time: now, note}. |
| cancel_timer | running, paused | idle | Nothing is logged. |

Edge cases:
- stop_timer less than one second after start returns NOTHING_TO_LOG and keeps the session.
- If the log can't be saved the session is kept; call stop_timer again.
- Sessions left running for a long time are paused automatically by the server.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
