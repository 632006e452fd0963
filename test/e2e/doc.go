/*
Package main provides end-to-end tests for the executor agent binary.

# Package Structure

	test/e2e/
	├── main.go          Entry point: config, InfraManager setup, Ginkgo runner
	├── flags.go         Command line flags
	├── tests.go         Ginkgo specs (pool strength, discard, backpressure, journal)
	├── doc.go           This file
	└── infra/           Agent lifecycle
	    ├── infra.go     InfraManager interface + AgentConfig
	    ├── process.go   ProcessInfraManager (child process, SIGTERM stop)
	    └── external.go  ExternalInfraManager (no-op, agent managed elsewhere)

# InfraManager

	type InfraManager interface {
	    StartAgent(cfg) (url, error)
	    StopAgent()
	    RestartAgent()
	}

Two implementations:
  - ProcessInfraManager runs the agent binary and waits for /health (default).
  - ExternalInfraManager returns the url given by -agent-api-url.

Selected via the -infra-mode flag ("process" or "external").

# Running

	go build -o bin/executor-agent ./cmd/executor-agent
	go run ./test/e2e -agent-binary bin/executor-agent
*/
package main
