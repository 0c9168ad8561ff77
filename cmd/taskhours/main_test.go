package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ganot/taskhours/internal/config"
	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TASKHOURS_CONFIG_PATH", "")
	t.Setenv("TASKHOURS_LOG_PATH", "")

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--env-file", "", "--db", dbPath, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCLI_AdminWorkflow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "taskhours.db")

	out, err := run(t, dbPath, "migrate")
	require.NoError(t, err)
	require.Contains(t, out, dbPath)

	out, err = run(t, dbPath, "user", "create",
		"--tenant", "acme", "--name", "Ada", "--email", "ada@acme.io", "--password", "s3cret!", "--role", "admin")
	require.NoError(t, err)
	var admin user.User
	require.NoError(t, json.Unmarshal([]byte(out), &admin))
	require.Equal(t, user.RoleAdmin, admin.Role)
	require.Equal(t, "acme", admin.TenantID)

	_, err = run(t, dbPath, "user", "create",
		"--tenant", "acme", "--name", "Bob", "--email", "bob@acme.io", "--password", "hunter22")
	require.NoError(t, err)

	out, err = run(t, dbPath, "apikey", "create", "--tenant", "acme", "--email", "bob@acme.io", "--description", "laptop")
	require.NoError(t, err)
	require.NotEmpty(t, strings.TrimSpace(out))

	out, err = run(t, dbPath, "report", "team", "--tenant", "acme", "--as", "ada@acme.io", "--timeframe", "month")
	require.NoError(t, err)
	var team report.TeamReport
	require.NoError(t, json.Unmarshal([]byte(out), &team))
	require.Equal(t, report.TimeframeMonth, team.Timeframe)
	require.Len(t, team.Users, 2)

	_, err = run(t, dbPath, "report", "team", "--tenant", "acme", "--as", "bob@acme.io")
	require.ErrorIs(t, err, user.ErrForbidden)

	// Unlike public signup, the CLI may add admins to a populated tenant.
	out, err = run(t, dbPath, "user", "create",
		"--tenant", "acme", "--name", "Cy", "--email", "cy@acme.io", "--password", "s3cret!", "--role", "admin")
	require.NoError(t, err)
	var second user.User
	require.NoError(t, json.Unmarshal([]byte(out), &second))
	require.Equal(t, user.RoleAdmin, second.Role)
}

func TestCLI_DuplicateEmail(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "taskhours.db")
	args := []string{"user", "create", "--name", "Ada", "--email", "ada@example.com", "--password", "s3cret!"}

	_, err := run(t, dbPath, args...)
	require.NoError(t, err)
	_, err = run(t, dbPath, args...)
	require.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestCLI_InvalidServeFlag(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "taskhours.db"), "serve", "--mcp", "carrier-pigeon")
	require.Error(t, err)
	require.Contains(t, err.Error(), "--mcp")
}

func TestApplyServeFlags(t *testing.T) {
	cmd := newServeCmd(&cli{})
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9000", "--mcp", "off", "--no-scheduler"}))

	cfg := config.Default()
	require.NoError(t, applyServeFlags(cmd, &cfg))
	require.Equal(t, 9000, cfg.Server.Port)
	require.False(t, cfg.MCP.Enabled)
	require.False(t, cfg.Scheduler.Enabled)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	logger, closeLog, err := newLogger(config.LogConfig{Level: "info", Format: "auto"}, "", &buf)
	require.NoError(t, err)
	defer closeLog()

	// A buffer is not a terminal, so auto picks JSON.
	logger.Info("hello", "k", "v")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "hello", line["msg"])

	buf.Reset()
	logger, _, err = newLogger(config.LogConfig{Level: "info", Format: "text"}, "", &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "msg=shown")
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskhours.log")
	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer w.file.Close()
	w.maxSize = 16
	w.keep = 8

	_, err = w.Write([]byte("0123456789"))
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdefghij"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "cdefghij", string(data))
}

func TestEnsureDBDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	require.NoError(t, ensureDBDir(filepath.Join(dir, "taskhours.db")))
	_, err := os.Stat(dir)
	require.NoError(t, err)
	require.NoError(t, ensureDBDir(":memory:"))
}
