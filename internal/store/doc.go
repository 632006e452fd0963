// Package store implements the data access layer for the executor agent.
//
// The store persists the executor journal in DuckDB. Tables are created by the
// embedded migrations in internal/store/migrations.
//
// # Architecture Overview
//
//	┌──────────────────────────────────────────┐
//	│              Store (facade)              │
//	├──────────────────────────────────────────┤
//	│               EventStore                 │
//	│                   ▼                      │
//	│                 events                   │
//	└──────────────────────────────────────────┘
//
// # Tables
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  events            │  Worker lifecycle and task failure journal  │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Query Building
//
// Listing queries are built with squirrel. Filters are expressed as
// ListOption values that decorate the select builder:
//
//	events, err := s.Events().List(ctx,
//	    store.ByKinds(models.EventWorkerDiscarded),
//	    store.ByWorker("probe/2"),
//	    store.WithLimit(50),
//	)
//
// Fixed queries live in queries.go.
//
// # Usage
//
//	db, err := store.NewDB(path)
//	if err != nil { ... }
//	if err := migrations.Run(ctx, db); err != nil { ... }
//	s := store.NewStore(db)
//	defer s.Close()
package store
