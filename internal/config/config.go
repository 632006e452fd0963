package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
)

type Configuration struct {
	Server    Server   `mapstructure:"server"`
	Executor  Executor `mapstructure:"executor"`
	Monitor   Monitor  `mapstructure:"monitor"`
	Store     Store    `mapstructure:"store"`
	Journal   Journal  `mapstructure:"journal"`
	LogFormat string   `mapstructure:"log-format" default:"console"`
	LogLevel  string   `mapstructure:"log-level" default:"info"`
}

type Server struct {
	ServerMode string `mapstructure:"mode" default:"dev"`
	HTTPPort   int    `mapstructure:"http-port" default:"8000"`
}

type Executor struct {
	Name     string `mapstructure:"name" default:"agent"`
	Workers  int    `mapstructure:"workers" default:"4"`
	MaxTasks int    `mapstructure:"max-tasks" default:"64"`
}

type Monitor struct {
	Paths    []string      `mapstructure:"paths"`
	Interval time.Duration `mapstructure:"interval" default:"30s"`
	Timeout  time.Duration `mapstructure:"timeout" default:"5s"`
}

type Store struct {
	// DataFolder holds the DuckDB file. Empty means an in-memory database.
	DataFolder string `mapstructure:"data-folder"`
}

type Journal struct {
	Buffer    int           `mapstructure:"buffer" default:"256"`
	Retention time.Duration `mapstructure:"retention" default:"168h"`
}

func NewConfigurationWithDefaults() *Configuration {
	c := &Configuration{}
	if err := defaults.Set(c); err != nil {
		panic(fmt.Sprintf("invalid configuration defaults: %v", err))
	}
	return c
}

// DatabasePath returns the DuckDB path derived from the data folder.
func (c *Configuration) DatabasePath() string {
	if c.Store.DataFolder == "" {
		return ":memory:"
	}
	return filepath.Join(c.Store.DataFolder, "agent.duckdb")
}

func (c *Configuration) Validate() error {
	var errs []error

	switch c.Server.ServerMode {
	case "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("invalid server mode %q: must be dev or prod", c.Server.ServerMode))
	}
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid http port %d", c.Server.HTTPPort))
	}

	if c.Executor.Name == "" {
		errs = append(errs, errors.New("executor name is required"))
	}
	if c.Executor.Workers <= 0 {
		errs = append(errs, fmt.Errorf("executor workers must be positive, got %d", c.Executor.Workers))
	}
	if c.Executor.MaxTasks <= 0 {
		errs = append(errs, fmt.Errorf("executor max tasks must be positive, got %d", c.Executor.MaxTasks))
	}

	if len(c.Monitor.Paths) > 0 && c.Monitor.Interval <= 0 {
		errs = append(errs, fmt.Errorf("monitor interval must be positive, got %s", c.Monitor.Interval))
	}
	if c.Monitor.Timeout < 0 {
		errs = append(errs, fmt.Errorf("monitor timeout must not be negative, got %s", c.Monitor.Timeout))
	}

	if c.Journal.Buffer <= 0 {
		errs = append(errs, fmt.Errorf("journal buffer must be positive, got %d", c.Journal.Buffer))
	}

	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be console or json", c.LogFormat))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}

// DebugMap returns the configuration as a flat map for logging.
func (c *Configuration) DebugMap() map[string]any {
	return map[string]any{
		"server.mode":        c.Server.ServerMode,
		"server.http-port":   c.Server.HTTPPort,
		"executor.name":      c.Executor.Name,
		"executor.workers":   c.Executor.Workers,
		"executor.max-tasks": c.Executor.MaxTasks,
		"monitor.paths":      c.Monitor.Paths,
		"monitor.interval":   c.Monitor.Interval.String(),
		"monitor.timeout":    c.Monitor.Timeout.String(),
		"store.data-folder":  c.Store.DataFolder,
		"journal.buffer":     c.Journal.Buffer,
		"journal.retention":  c.Journal.Retention.String(),
		"log-format":         c.LogFormat,
		"log-level":          c.LogLevel,
	}
}
