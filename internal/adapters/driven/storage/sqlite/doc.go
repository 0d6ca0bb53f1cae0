// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements several store interfaces through a single database connection:
//
//   - DocumentStore: normalised documents keyed by content hash
//   - SnapshotStore: the last committed snapshot of every synchronised root
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each applied version is recorded in
// schema_migrations inside the same transaction as the migration itself.
//
// # Data Location
//
// By default, the database is stored at ~/.docmirror/data/docmirror.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite's locking in
// WAL mode with a busy timeout.
package sqlite
