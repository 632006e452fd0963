// Package services implements the business logic layer of the executor agent.
//
// Services sit between the HTTP handlers and the executor or the store. Each
// one owns its state and guards it with its own mutex.
//
// # Service Dependency Graph
//
//	Handlers (HTTP endpoints)
//	    │
//	    ▼
//	Services Layer
//	    ├── Journal ──► EventStore          (executor.Observer)
//	    └── Monitor ──► Executor.Dispatch   (periodic path probes)
//
// # Journal
//
// Journal implements executor.Observer and records worker lifecycle events,
// task failures and rejections into the events table. Observer callbacks must
// not block, so events go through a buffered channel drained by one writer
// goroutine that inserts them in batches:
//
//	observer callback ──► chan Event (buffered) ──► writer ──► EventStore.Insert
//	                           │
//	                           └── full: event dropped, warning logged
//
// Close stops accepting events, flushes what is buffered and waits for the
// writer to exit.
//
// # Monitor
//
// Monitor checks a list of paths every interval. Each check is one executor
// task with the probe timeout, so a path on a dead network mount blocks a
// single worker which the executor then discards and replaces.
//
// Per path state:
//
//	┌─────────┐  check  ┌────┐
//	│ Pending │────────►│ OK │◄───┐
//	└─────────┘         └────┘    │ check returned
//	     │                        │
//	     │  check failed     ┌────┴──┐
//	     └──────────────────►│ Error │
//	                         └───────┘
//	previous check still running at next round ──► Stuck
//
// Dispatch is retried with exponential backoff while the executor queue is
// full. A NotRunning error is permanent and ends the round for that path.
package services
