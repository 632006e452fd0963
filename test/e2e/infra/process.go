package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

const (
	readyTimeout = 15 * time.Second
	stopTimeout  = 40 * time.Second
)

// ProcessInfraManager runs the agent binary as a child process.
type ProcessInfraManager struct {
	binary string
	output io.Writer

	mu   sync.Mutex
	cfg  AgentConfig
	cmd  *exec.Cmd
	exit chan error
}

func NewProcessInfraManager(binary string, output io.Writer) (*ProcessInfraManager, error) {
	if _, err := os.Stat(binary); err != nil {
		return nil, fmt.Errorf("agent binary not found: %w", err)
	}
	return &ProcessInfraManager{binary: binary, output: output}, nil
}

func (p *ProcessInfraManager) StartAgent(cfg AgentConfig) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return "", errors.New("agent already running")
	}

	cmd := exec.Command(p.binary, cfg.args()...)
	cmd.Stdout = p.output
	cmd.Stderr = p.output
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start agent: %w", err)
	}

	exit := make(chan error, 1)
	go func() { exit <- cmd.Wait() }()

	p.cfg = cfg
	p.cmd = cmd
	p.exit = exit

	url := "http://localhost:" + itoa(cfg.HTTPPort)
	if err := waitReady(url, exit); err != nil {
		_ = cmd.Process.Kill()
		<-exit
		p.cmd = nil
		return "", err
	}

	zap.S().Named("e2e").Infow("agent started", "pid", cmd.Process.Pid, "url", url)
	return url, nil
}

// StopAgent sends SIGTERM and waits for a clean exit.
func (p *ProcessInfraManager) StopAgent() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil {
		return nil
	}
	defer func() { p.cmd = nil }()

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal agent: %w", err)
	}

	select {
	case err := <-p.exit:
		return err
	case <-time.After(stopTimeout):
		_ = p.cmd.Process.Kill()
		<-p.exit
		return errors.New("agent did not stop in time")
	}
}

func (p *ProcessInfraManager) RestartAgent() error {
	if err := p.StopAgent(); err != nil {
		return err
	}
	_, err := p.StartAgent(p.cfg)
	return err
}

// waitReady polls /health. An early exit is put back on exit for the caller.
func waitReady(url string, exit chan error) error {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		select {
		case err := <-exit:
			exit <- err
			return struct{}{}, backoff.Permanent(fmt.Errorf("agent exited: %v", err))
		default:
		}

		resp, err := http.Get(url + "/health")
		if err != nil {
			return struct{}{}, err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return struct{}{}, fmt.Errorf("health returned %d", resp.StatusCode)
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(backoff.NewConstantBackOff(100*time.Millisecond)))

	return err
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
