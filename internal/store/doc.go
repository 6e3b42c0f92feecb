// Package store provides the SQLite-backed operation journal for watchset.
//
// The journal is append-only and holds two kinds of rows:
//   - Sessions: one per engine instance, with the registry configuration it
//     was built from
//   - Ops: every mutation the engine applied successfully, in order
//
// Queries and rejected operations are never written. Replaying a session's
// ops against a fresh registry built from the session config reproduces the
// registry state exactly.
//
// # Ordering
//
// Ops are ordered by the journal's logical seq, never by wall-clock time.
// Every read uses ORDER BY seq ASC, id ASC COLLATE BINARY so results are
// identical across replays.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Ops must reference an existing session
//
// The journal is a diagnostic trace. It is not used to recover a live engine
// after a restart.
package store
