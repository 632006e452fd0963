package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	v1 "github.com/kubev2v/executor-agent/api/v1"
	"github.com/kubev2v/executor-agent/pkg/client"
)

func NewStatusCommand() *cobra.Command {
	var (
		url        string
		withProbes bool
		configFile string
	)

	cmd := &cobra.Command{
		Use:     "status",
		Short:   "Print the executor status of a running agent",
		PreRunE: syncFlags(&configFile),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.NewClient(url)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			status, err := c.GetExecutorStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to get executor status: %w", err)
			}

			var probes []v1.Probe
			if withProbes {
				if probes, err = c.GetProbes(ctx); err != nil {
					return fmt.Errorf("failed to get probes: %w", err)
				}
			}

			renderStatus(os.Stdout, status, probes)
			return nil
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a config file (yaml, json or toml)")
	cmd.Flags().StringVar(&url, "url", "http://localhost:8000", "Agent base URL")
	cmd.Flags().BoolVar(&withProbes, "probes", false, "Also print monitored paths")
	return cmd
}

func renderStatus(w io.Writer, status *v1.ExecutorStatus, probes []v1.Probe) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	state := green.Sprint("running")
	if !status.Running {
		state = red.Sprint("stopped")
	}

	_, _ = bold.Fprintf(w, "Executor %s", status.Name)
	fmt.Fprintf(w, " (%s)\n", state)
	fmt.Fprintf(w, "  workers: %d/%d active, %d discarded\n", status.Active, status.Configured, status.Discarded)
	fmt.Fprintf(w, "  queue:   %d/%d\n", status.Queued, status.Capacity)

	for _, wk := range status.Workers {
		line := string(v1.WorkerStateWaiting)
		if wk.Task != nil {
			line = green.Sprintf("running %s", *wk.Task)
		}
		if wk.Discarded {
			line = red.Sprintf("discarded, still running %s", deref(wk.Task))
		}
		fmt.Fprintf(w, "  - %s: %s\n", wk.Name, line)
	}

	if len(probes) == 0 {
		return
	}
	_, _ = bold.Fprintln(w, "Probes")
	for _, p := range probes {
		var st string
		switch p.State {
		case "ok":
			st = green.Sprint(p.State)
		case "stuck", "error":
			st = red.Sprint(p.State)
		default:
			st = yellow.Sprint(p.State)
		}
		fmt.Fprintf(w, "  - %s: %s", p.Path, st)
		if p.Error != nil {
			fmt.Fprintf(w, " (%s)", *p.Error)
		}
		fmt.Fprintln(w)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
