// Package scheduler implements a single goroutine scheduler for delayed calls.
//
// The scheduler keeps pending calls in a min-heap ordered by deadline and runs
// an event loop which sleeps until the earliest deadline. Expired calls are
// invoked one after another on the scheduler goroutine, so callbacks must be
// short and must never block.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────────┐
//	│                           Scheduler                                 │
//	│                                                                     │
//	│   Schedule(delay, fn) ──► add channel ──► ┌──────────────────────┐  │
//	│                                           │   run() event loop   │  │
//	│   Close() ───────────► close channel ───► │                      │  │
//	│                                           └──────────┬───────────┘  │
//	│                                                      │              │
//	│                         ┌────────────────────────────┴──────────┐   │
//	│                         │  calls (min-heap by deadline)         │   │
//	│                         │  [t+10ms] [t+30ms] [t+2s] ...         │   │
//	│                         └───────────────────────────────────────┘   │
//	└─────────────────────────────────────────────────────────────────────┘
//
// # Event Loop (run method)
//
//	for {
//	    timer.Reset(s.nextWakeup())
//	    select {
//	    case c := <-s.add:     // New call scheduled
//	        heap.Push(&s.calls, c)
//	    case <-timer.C:        // Earliest deadline reached
//	        s.fire()
//	    case <-s.close:        // Shutdown requested
//	        return
//	    }
//	}
//
// # Cancellation
//
// Schedule returns a Handle. Cancel only marks the call; the loop skips
// marked calls when their deadline comes. Cancel is best-effort: when it races
// with the deadline the callback may still run. Callers must tolerate a
// callback firing after they canceled it.
//
// # Panics
//
// Callbacks are not wrapped with recover. A panicking callback is treated as a
// programming error and terminates the process.
//
// # Usage Example
//
//	sched := scheduler.New()
//	defer sched.Close()
//
//	h := sched.Schedule(100*time.Millisecond, func() {
//	    log.Println("deadline expired")
//	})
//
//	// Work finished in time
//	h.Cancel()
package scheduler
