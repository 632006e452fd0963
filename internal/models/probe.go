package models

import "time"

// ProbeState is the outcome of the last check of a monitored path.
type ProbeState string

const (
	// ProbeStatePending - no check finished yet
	ProbeStatePending ProbeState = "pending"
	// ProbeStateOK - the path answered
	ProbeStateOK ProbeState = "ok"
	// ProbeStateError - the path check failed or could not be dispatched
	ProbeStateError ProbeState = "error"
	// ProbeStateStuck - the check exceeded its timeout and is still blocked
	ProbeStateStuck ProbeState = "stuck"
)

// ProbeResult holds the latest check of a monitored path.
type ProbeResult struct {
	Path      string
	State     ProbeState
	Error     string
	Latency   time.Duration
	CheckedAt time.Time
}
