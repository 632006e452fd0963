package v1

import (
	"github.com/kubev2v/executor-agent/internal/models"
	"github.com/kubev2v/executor-agent/pkg/executor"
)

func (s *ExecutorStatus) FromModel(m executor.Status) {
	s.Name = m.Name
	s.Running = m.Running
	s.Configured = m.Configured
	s.Active = m.Active()
	s.Discarded = m.Discarded()
	s.Queued = m.Queued
	s.Capacity = m.Capacity
	s.Workers = make([]Worker, 0, len(m.Workers))
	for _, w := range m.Workers {
		s.Workers = append(s.Workers, NewWorkerFromModel(w))
	}
}

func NewWorkerFromModel(w executor.WorkerStatus) Worker {
	worker := Worker{
		Name:      w.Name,
		State:     WorkerStateWaiting,
		Discarded: w.Discarded,
	}
	if w.Task != "" {
		task := w.Task
		worker.State = WorkerStateRunning
		worker.Task = &task
	}
	return worker
}

// NewEventFromModel converts a models.Event to an API Event.
func NewEventFromModel(e models.Event) Event {
	return Event{
		Id:        e.ID.String(),
		Executor:  e.Executor,
		Kind:      string(e.Kind),
		Worker:    e.Worker,
		TaskId:    e.TaskID,
		Message:   e.Message,
		CreatedAt: e.CreatedAt,
	}
}

func NewProbeFromModel(r models.ProbeResult) Probe {
	p := Probe{
		Path:      r.Path,
		State:     string(r.State),
		LatencyMs: r.Latency.Milliseconds(),
	}
	if r.Error != "" {
		msg := r.Error
		p.Error = &msg
	}
	if !r.CheckedAt.IsZero() {
		checked := r.CheckedAt
		p.CheckedAt = &checked
	}
	return p
}

// ParseEventKinds converts API kind params to event kinds.
func ParseEventKinds(kinds []string) ([]models.EventKind, error) {
	var result []models.EventKind
	for _, k := range kinds {
		kind, err := models.ParseEventKind(k)
		if err != nil {
			return nil, err
		}
		result = append(result, kind)
	}
	return result, nil
}
