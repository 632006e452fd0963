package main

import "github.com/spf13/pflag"

func pflagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("e2e", pflag.ExitOnError)
	fs.StringVar(&cfg.InfraMode, "infra-mode", "process", "Infrastructure mode: 'process' (child process) or 'external' (already running)")
	fs.StringVar(&cfg.AgentBinary, "agent-binary", "bin/executor-agent", "Agent binary used in process mode")
	fs.StringVar(&cfg.AgentAPIUrl, "agent-api-url", "http://localhost:8000", "Agent API url in external mode")
	fs.IntVar(&cfg.HTTPPort, "http-port", 18000, "Agent port in process mode")
	return fs
}
