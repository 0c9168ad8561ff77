package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "TASKHOURS_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Timer     TimerConfig     `yaml:"timer"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	MCP       MCPConfig       `yaml:"mcp"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// CookieSecure sets the Secure flag on the session cookie.
	CookieSecure bool `yaml:"cookie_secure"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is "text", "json" or "auto" (text on a terminal).
	Format string `yaml:"format"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type TimerConfig struct {
	// AutoPauseAfter pauses running timers older than this. Zero disables it.
	AutoPauseAfter time.Duration `yaml:"auto_pause_after"`
}

type SchedulerConfig struct {
	Enabled           bool   `yaml:"enabled"`
	StaleTimerSpec    string `yaml:"stale_timer_spec"`
	OverdueDigestSpec string `yaml:"overdue_digest_spec"`
	SessionPurgeSpec  string `yaml:"session_purge_spec"`
}

type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
	// Transport is "http" (mounted at /mcp) or "stdio".
	Transport string `yaml:"transport"`
	// StdioAPIKey authenticates the single stdio client.
	StdioAPIKey string `yaml:"stdio_api_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "taskhours.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
		},
		Timer: TimerConfig{
			AutoPauseAfter: 12 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			Enabled:           true,
			StaleTimerSpec:    "@every 15m",
			OverdueDigestSpec: "0 7 * * *",
			SessionPurgeSpec:  "@hourly",
		},
		MCP: MCPConfig{
			Enabled:   true,
			Transport: "http",
		},
	}
}

// Load reads configuration from defaults, the YAML file named by
// TASKHOURS_CONFIG_PATH and TASKHOURS_* environment variables, in that order.
func Load() (Config, error) {
	return LoadFile(os.Getenv(envPrefix + "CONFIG_PATH"))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.DB.Path == "" {
		return fmt.Errorf("db path is required")
	}
	switch c.MCP.Transport {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid mcp transport %q", c.MCP.Transport)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	if c.Timer.AutoPauseAfter < 0 {
		return fmt.Errorf("timer auto pause must not be negative")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv(envPrefix + "SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv(envPrefix + "SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", envPrefix, err)
		}
		cfg.Server.Port = port
	}
	if err := envBool("COOKIE_SECURE", &cfg.Server.CookieSecure); err != nil {
		return err
	}
	if dbPath := os.Getenv(envPrefix + "DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv(envPrefix + "LOG_LEVEL"); level != "" {
		cfg.Log.Level = strings.ToLower(level)
	}
	if format := os.Getenv(envPrefix + "LOG_FORMAT"); format != "" {
		cfg.Log.Format = strings.ToLower(format)
	}
	if err := envDuration("SESSION_TTL", &cfg.Auth.SessionTTL); err != nil {
		return err
	}
	if err := envDuration("TIMER_AUTO_PAUSE_AFTER", &cfg.Timer.AutoPauseAfter); err != nil {
		return err
	}
	if err := envBool("SCHEDULER_ENABLED", &cfg.Scheduler.Enabled); err != nil {
		return err
	}
	if err := envBool("MCP_ENABLED", &cfg.MCP.Enabled); err != nil {
		return err
	}
	if transport := os.Getenv(envPrefix + "MCP_TRANSPORT"); transport != "" {
		cfg.MCP.Transport = strings.ToLower(transport)
	}
	if key := os.Getenv(envPrefix + "MCP_API_KEY"); key != "" {
		cfg.MCP.StdioAPIKey = key
	}
	return nil
}

func envBool(name string, dst *bool) error {
	raw := os.Getenv(envPrefix + name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*dst = v
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	raw := os.Getenv(envPrefix + name)
	if raw == "" {
		return nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*dst = v
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
