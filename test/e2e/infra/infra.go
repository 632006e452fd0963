package infra

import "time"

// InfraManager abstracts the agent lifecycle for e2e tests.
// Process-based: runs the agent binary as a child process.
// External: no-op, the agent is started and configured outside the suite.
type InfraManager interface {
	StartAgent(cfg AgentConfig) (string, error)
	StopAgent() error
	RestartAgent() error
}

// AgentConfig holds configuration for starting an agent instance.
type AgentConfig struct {
	HTTPPort        int
	Workers         int
	MaxTasks        int
	MonitorPaths    []string
	MonitorInterval time.Duration
	MonitorTimeout  time.Duration
	DataFolder      string // empty for an in-memory journal
}

func (c AgentConfig) args() []string {
	args := []string{
		"run",
		"--log-format=json",
		"--log-level=debug",
	}
	if c.HTTPPort > 0 {
		args = append(args, "--http-port="+itoa(c.HTTPPort))
	}
	if c.Workers > 0 {
		args = append(args, "--workers="+itoa(c.Workers))
	}
	if c.MaxTasks > 0 {
		args = append(args, "--max-tasks="+itoa(c.MaxTasks))
	}
	for _, p := range c.MonitorPaths {
		args = append(args, "--monitor-path="+p)
	}
	if c.MonitorInterval > 0 {
		args = append(args, "--monitor-interval="+c.MonitorInterval.String())
	}
	if c.MonitorTimeout > 0 {
		args = append(args, "--monitor-timeout="+c.MonitorTimeout.String())
	}
	if c.DataFolder != "" {
		args = append(args, "--data-folder="+c.DataFolder)
	}
	return args
}
