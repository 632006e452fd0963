// Package server provides the HTTP server for the executor agent.
//
// # Architecture Overview
//
//	┌───────────────────────────────────────────────────────────────┐
//	│                         HTTP Server                           │
//	├───────────────────────────────────────────────────────────────┤
//	│                       Middleware Stack                        │
//	│  ┌─────────────────────────────────────────────────────────┐  │
//	│  │  ginzap.Ginzap (request logging, "http" logger)         │  │
//	│  │  ginzap.RecoveryWithZap (panic recovery, stack trace)   │  │
//	│  └─────────────────────────────────────────────────────────┘  │
//	├───────────────────────────────────────────────────────────────┤
//	│  /metrics      Prometheus exposition                          │
//	│  /health       liveness                                       │
//	│  /api/v1/*     handlers (registered via callback)             │
//	└───────────────────────────────────────────────────────────────┘
//
// ServerMode "prod" puts gin in release mode; "dev" keeps debug mode.
//
// # Server Lifecycle
//
//	srv := server.NewServer(cfg, registry, func(router *gin.RouterGroup) {
//	    v1.RegisterHandlers(router, handler)
//	})
//
//	// Blocks until error or shutdown
//	err := srv.Start(ctx)
//
//	// Graceful shutdown, waits for in-flight requests
//	srv.Stop(ctx)
package server
