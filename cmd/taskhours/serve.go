package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ganot/taskhours/internal/app"
	"github.com/ganot/taskhours/internal/config"
	"github.com/ganot/taskhours/internal/mcp"
	"github.com/ganot/taskhours/internal/scheduler"
	"github.com/ganot/taskhours/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, or the MCP server over stdio",
		Long: `Run the taskhours server.

By default the REST API listens on the configured address and the MCP
endpoint is mounted at /mcp. With --mcp stdio the process instead serves a
single MCP client on stdin/stdout, authenticated by TASKHOURS_MCP_API_KEY.

Examples:
  taskhours serve --port 9000
  taskhours serve --mcp off --no-scheduler
  TASKHOURS_MCP_API_KEY=... taskhours serve --mcp stdio`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd)
		},
	}
	cmd.Flags().String("host", "", "listen host")
	cmd.Flags().Int("port", 0, "listen port")
	cmd.Flags().String("mcp", "", "MCP transport: http, stdio or off")
	cmd.Flags().Bool("no-scheduler", false, "disable background jobs")
	return cmd
}

// applyServeFlags copies serve flags the user set onto cfg. Commands without
// these flags leave cfg untouched.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("mcp") {
		mode, _ := flags.GetString("mcp")
		switch mode {
		case "off":
			cfg.MCP.Enabled = false
		case "http", "stdio":
			cfg.MCP.Enabled = true
			cfg.MCP.Transport = mode
		default:
			return fmt.Errorf("invalid --mcp value %q", mode)
		}
	}
	if flags.Changed("no-scheduler") {
		if off, _ := flags.GetBool("no-scheduler"); off {
			cfg.Scheduler.Enabled = false
		}
	}
	return nil
}

func (c *cli) serve(cmd *cobra.Command) error {
	a, err := c.openApp()
	if err != nil {
		return err
	}
	defer a.DB.Close()

	ctx, stop := signal.NotifyContext(c.context(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched, err := c.startScheduler(a)
	if err != nil {
		return err
	}
	if sched != nil {
		defer sched.Stop()
	}

	if c.cfg.MCP.Enabled && c.cfg.MCP.Transport == "stdio" {
		return c.runStdioMode(ctx, a)
	}
	return c.runHTTPMode(ctx, a)
}

func (c *cli) startScheduler(a *app.App) (*scheduler.Scheduler, error) {
	if !c.cfg.Scheduler.Enabled {
		return nil, nil
	}
	s, err := scheduler.New(a.SchedulerJobs(), scheduler.Options{
		StaleTimerSpec:    c.cfg.Scheduler.StaleTimerSpec,
		OverdueDigestSpec: c.cfg.Scheduler.OverdueDigestSpec,
		SessionPurgeSpec:  c.cfg.Scheduler.SessionPurgeSpec,
		AutoPauseAfter:    c.cfg.Timer.AutoPauseAfter,
	}, c.logger)
	if err != nil {
		return nil, err
	}
	s.Start()
	c.logger.Info("scheduler started", "jobs", s.Entries())
	return s, nil
}

func (c *cli) runStdioMode(ctx context.Context, a *app.App) error {
	actor, err := a.Users.ResolveAPIKey(ctx, c.cfg.MCP.StdioAPIKey)
	if err != nil {
		return fmt.Errorf("stdio mode needs a valid TASKHOURS_MCP_API_KEY: %w", err)
	}
	c.logger.Info("starting stdio transport", "tenant_id", actor.TenantID, "user_id", actor.UserID)

	server := mcp.NewServer(mcp.Config{
		Services:       a.MCPServices(),
		TransportMode:  "stdio",
		StdioPrincipal: actor,
		Logger:         c.logger,
	})

	// Run blocks until stdin closes or ctx is canceled.
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	c.logger.Info("shutting down")
	return nil
}

func (c *cli) runHTTPMode(ctx context.Context, a *app.App) error {
	opts := transport.Options{
		Logger:       c.logger,
		CookieSecure: c.cfg.Server.CookieSecure,
	}
	if c.cfg.MCP.Enabled {
		mcpServer := mcp.NewServer(mcp.Config{
			Services:      a.MCPServices(),
			Resolver:      a.Users,
			TransportMode: "http",
			Logger:        c.logger,
		})
		opts.MCP = sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return mcpServer },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		)
	}

	addr := c.cfg.Addr()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(a.HTTPServices(), opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info("server listening", "addr", addr, "mcp", c.cfg.MCP.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	c.logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
