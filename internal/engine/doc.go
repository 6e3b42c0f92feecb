// Package engine routes watchset operations to a list registry.
//
// An Engine owns one registry, applies ir.Op values to it and, when a store
// is attached, appends every successful mutation to the session journal.
// Queries are answered but never journaled.
//
// Journal records are ordered by a logical clock (Clock), never by wall time,
// so replaying a session reproduces the same registry state. Replay and
// VerifyReplay rebuild engines from that journal.
package engine
