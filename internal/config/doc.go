// Package config defines the configuration structure for the executor agent.
//
// Defaults come from `default` struct tags applied by creasty/defaults. The
// command line binds flags and EXECUTOR_AGENT_* environment variables through
// viper onto the same structure.
//
// # Configuration Structure
//
//	Configuration
//	├── Server         - HTTP server settings
//	├── Executor       - Worker pool sizing
//	├── Monitor        - Path probes run on the executor
//	├── Store          - DuckDB location
//	├── Journal        - Event journal buffering and retention
//	├── LogFormat      - Logging format
//	└── LogLevel       - Logging verbosity
//
// # Executor Configuration
//
//	┌──────────┬─────────┬────────────────────────────────────────┐
//	│ Field    │ Default │ Description                            │
//	├──────────┼─────────┼────────────────────────────────────────┤
//	│ Name     │ "agent" │ Executor name, prefix of worker names  │
//	│ Workers  │ 4       │ Live workers kept in the pool          │
//	│ MaxTasks │ 64      │ Queue capacity                         │
//	└──────────┴─────────┴────────────────────────────────────────┘
//
// # Monitor Configuration
//
//	┌──────────┬─────────┬────────────────────────────────────────┐
//	│ Field    │ Default │ Description                            │
//	├──────────┼─────────┼────────────────────────────────────────┤
//	│ Paths    │ none    │ Paths to stat                          │
//	│ Interval │ 30s     │ Time between check rounds              │
//	│ Timeout  │ 5s      │ Task timeout of one probe              │
//	└──────────┴─────────┴────────────────────────────────────────┘
//
// # Debug Logging
//
//	log.Info("configuration loaded", zap.Any("config", cfg.DebugMap()))
package config
