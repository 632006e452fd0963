// Package handlers implements the HTTP API layer for the executor agent.
//
// Handlers validate requests, delegate to the executor and the services, and
// map results and errors to HTTP responses.
//
// # Handler Structure
//
//	type Handler struct {
//	    executor Executor            // Status + Dispatch
//	    journal  *services.Journal
//	    monitor  *services.Monitor   // nil when no paths are monitored
//	}
//
// Routes are registered through the api/v1 ServerInterface:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
//	┌────────┬──────────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint         │ Description                              │
//	├────────┼──────────────────┼──────────────────────────────────────────┤
//	│ GET    │ /executor        │ Pool snapshot, one entry per worker      │
//	│ POST   │ /executor/tasks  │ Dispatch a diagnostic sleep task         │
//	│ GET    │ /events          │ Journal with kind/worker filters, paging │
//	│ GET    │ /probes          │ Last result of every monitored path      │
//	└────────┴──────────────────┴──────────────────────────────────────────┘
//
// # Error Mapping
//
//	┌─────────────────────────┬────────┐
//	│ Error                   │ Status │
//	├─────────────────────────┼────────┤
//	│ invalid body or params  │ 400    │
//	│ TooManyTasksError       │ 429    │
//	│ NotRunningError         │ 503    │
//	│ anything else           │ 500    │
//	└─────────────────────────┴────────┘
//
// Errors are returned as {"error": "<message>"}.
package handlers
