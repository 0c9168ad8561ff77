package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TASKHOURS_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "taskhours.db", cfg.DB.Path)
	require.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	require.Equal(t, "http", cfg.MCP.Transport)
	require.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskhours.yaml")
	yaml := `
server:
  port: 9090
  cookie_secure: true
db:
  path: /var/lib/taskhours/data.db
timer:
  auto_pause_after: 8h
scheduler:
  stale_timer_spec: "@every 5m"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("TASKHOURS_CONFIG_PATH", path)
	t.Setenv("TASKHOURS_SERVER_PORT", "9191")
	t.Setenv("TASKHOURS_LOG_LEVEL", "DEBUG")
	t.Setenv("TASKHOURS_MCP_TRANSPORT", "stdio")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
	require.True(t, cfg.Server.CookieSecure)
	require.Equal(t, "/var/lib/taskhours/data.db", cfg.DB.Path)
	require.Equal(t, 8*time.Hour, cfg.Timer.AutoPauseAfter)
	require.Equal(t, "@every 5m", cfg.Scheduler.StaleTimerSpec)
	require.Equal(t, "0 7 * * *", cfg.Scheduler.OverdueDigestSpec)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "stdio", cfg.MCP.Transport)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("TASKHOURS_CONFIG_PATH", "")

	t.Setenv("TASKHOURS_SERVER_PORT", "eighty")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("TASKHOURS_SERVER_PORT", "")
	t.Setenv("TASKHOURS_SESSION_TTL", "forever")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("TASKHOURS_SESSION_TTL", "")
	t.Setenv("TASKHOURS_MCP_TRANSPORT", "carrier-pigeon")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
