package v1

import "time"

// ExecutorStatus is the executor pool snapshot.
type ExecutorStatus struct {
	Name       string   `json:"name"`
	Running    bool     `json:"running"`
	Configured int      `json:"configured"`
	Active     int      `json:"active"`
	Discarded  int      `json:"discarded"`
	Queued     int      `json:"queued"`
	Capacity   int      `json:"capacity"`
	Workers    []Worker `json:"workers"`
}

type WorkerState string

const (
	WorkerStateWaiting WorkerState = "waiting"
	WorkerStateRunning WorkerState = "running"
)

type Worker struct {
	Name      string      `json:"name"`
	State     WorkerState `json:"state"`
	Task      *string     `json:"task,omitempty"`
	Discarded bool        `json:"discarded"`
}

// TaskRequest dispatches a diagnostic task that sleeps and optionally fails.
// Durations use Go syntax ("250ms", "2s").
type TaskRequest struct {
	Sleep   string `json:"sleep"`
	Timeout string `json:"timeout,omitempty"`
	Fail    bool   `json:"fail,omitempty"`
}

type TaskAccepted struct {
	Status string `json:"status"`
}

type Event struct {
	Id        string    `json:"id"`
	Executor  string    `json:"executor"`
	Kind      string    `json:"kind"`
	Worker    string    `json:"worker,omitempty"`
	TaskId    string    `json:"taskId,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type EventListResponse struct {
	Events    []Event `json:"events"`
	Page      int     `json:"page"`
	PageCount int     `json:"pageCount"`
	Total     int     `json:"total"`
}

// GetEventsParams defines parameters for GetEvents.
type GetEventsParams struct {
	Kind     []string `form:"kind"`
	Worker   string   `form:"worker"`
	Page     int      `form:"page"`
	PageSize int      `form:"pageSize"`
}

type Probe struct {
	Path      string     `json:"path"`
	State     string     `json:"state"`
	Error     *string    `json:"error,omitempty"`
	LatencyMs int64      `json:"latencyMs"`
	CheckedAt *time.Time `json:"checkedAt,omitempty"`
}

type ProbeListResponse struct {
	Probes []Probe `json:"probes"`
}
