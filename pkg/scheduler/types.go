package scheduler

import (
	"sync/atomic"
	"time"
)

// Handle is returned by Schedule and allows to cancel a pending call.
type Handle interface {
	// Cancel prevents the call from running if it did not start yet.
	// It is safe to call Cancel more than once, and after the call ran.
	Cancel()
}

// Call is a callback scheduled to run at a specific time.
type Call struct {
	deadline time.Time
	fn       func()
	canceled atomic.Bool
	index    int
}

func (c *Call) Cancel() {
	c.canceled.Store(true)
}

// Canceled reports whether Cancel was called.
func (c *Call) Canceled() bool {
	return c.canceled.Load()
}

type calls []*Call

func (q calls) Len() int           { return len(q) }
func (q calls) Less(i, j int) bool { return q[i].deadline.Before(q[j].deadline) }
func (q calls) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *calls) Push(x any) {
	c := x.(*Call)
	c.index = len(*q)
	*q = append(*q, c)
}

func (q *calls) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	c.index = -1
	*q = old[:n-1]
	return c
}

func (q calls) peek() *Call {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
