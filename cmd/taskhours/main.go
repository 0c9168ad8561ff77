package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ganot/taskhours/internal/app"
	"github.com/ganot/taskhours/internal/config"
	"github.com/ganot/taskhours/internal/sqlite"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand.
type cli struct {
	envFile    string
	configPath string
	dbPath     string
	logLevel   string
	logFormat  string

	cfg      config.Config
	logger   *slog.Logger
	closeLog func()
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "taskhours",
		Short:         "Project, task and time tracking server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.closeLog != nil {
				c.closeLog()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before configuration")
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML config file (overrides TASKHOURS_CONFIG_PATH)")
	flags.StringVar(&c.dbPath, "db", "", "SQLite database path")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	flags.StringVar(&c.logFormat, "log-format", "", "auto, text or json")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newUserCmd(c),
		newAPIKeyCmd(c),
		newReportCmd(c),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	if c.envFile != "" {
		// Variables already set in the environment win over the file.
		if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", c.envFile, err)
		}
	}

	path := c.configPath
	if path == "" {
		path = os.Getenv("TASKHOURS_CONFIG_PATH")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.dbPath != "" {
		cfg.DB.Path = c.dbPath
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if err := applyServeFlags(cmd, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	c.cfg = cfg

	logger, closeLog, err := newLogger(cfg.Log, os.Getenv("TASKHOURS_LOG_PATH"), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.logger = logger
	c.closeLog = closeLog
	return nil
}

// openApp opens the database, applies the schema and wires services.
func (c *cli) openApp() (*app.App, error) {
	if err := ensureDBDir(c.cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("preparing database path: %w", err)
	}
	db, err := sqlite.New(c.cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return app.New(db, app.Options{
		Logger:     c.logger,
		SessionTTL: c.cfg.Auth.SessionTTL,
	}), nil
}

func (c *cli) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
