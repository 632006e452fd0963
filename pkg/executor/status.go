package executor

import (
	"cmp"
	"strconv"
	"strings"
)

// Status is a point in time view of an executor.
type Status struct {
	Name       string
	Running    bool
	Configured int
	Queued     int
	Capacity   int
	Workers    []WorkerStatus
}

type WorkerStatus struct {
	Name      string
	Task      string
	Discarded bool
}

// Discarded returns the number of discarded workers still blocked on a task.
func (s Status) Discarded() int {
	n := 0
	for _, w := range s.Workers {
		if w.Discarded {
			n++
		}
	}
	return n
}

// Active returns the number of workers accounted as pool capacity.
func (s Status) Active() int {
	return len(s.Workers) - s.Discarded()
}

// compareWorkerNames orders "<executor>/<id>" names by numeric id.
func compareWorkerNames(a, b string) int {
	return cmp.Compare(workerIndex(a), workerIndex(b))
}

func workerIndex(name string) int {
	i := strings.LastIndexByte(name, '/')
	n, err := strconv.Atoi(name[i+1:])
	if err != nil {
		return -1
	}
	return n
}
