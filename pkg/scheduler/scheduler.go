package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// idle is the timer period used when nothing is scheduled.
const idle = time.Hour

type Scheduler struct {
	calls calls
	add   chan *Call
	close chan any
	done  chan any
	once  sync.Once
}

func New() *Scheduler {
	s := &Scheduler{
		add:   make(chan *Call),
		close: make(chan any),
		done:  make(chan any),
	}
	heap.Init(&s.calls)
	go s.run()
	return s
}

// Schedule arranges for fn to be called on the scheduler goroutine after delay.
// Calls scheduled after Close never run.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) Handle {
	c := &Call{deadline: time.Now().Add(delay), fn: fn}
	select {
	case s.add <- c:
	case <-s.done:
		c.Cancel()
	}
	return c
}

// Close stops the scheduler goroutine. Pending calls are dropped.
func (s *Scheduler) Close() {
	s.once.Do(func() {
		close(s.close)
		<-s.done
	})
}

func (s *Scheduler) run() {
	defer close(s.done)

	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		timer.Reset(s.nextWakeup())

		select {
		case c := <-s.add:
			heap.Push(&s.calls, c)
		case <-timer.C:
			s.fire()
		case <-s.close:
			s.calls = nil
			return
		}
	}
}

func (s *Scheduler) nextWakeup() time.Duration {
	next := s.calls.peek()
	if next == nil {
		return idle
	}
	return max(time.Until(next.deadline), 0)
}

// fire runs every expired call. A panic in a callback is not recovered and
// takes the process down.
func (s *Scheduler) fire() {
	now := time.Now()
	for {
		next := s.calls.peek()
		if next == nil || next.deadline.After(now) {
			return
		}
		heap.Pop(&s.calls)
		if next.Canceled() {
			continue
		}
		next.fn()
	}
}
