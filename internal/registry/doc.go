// Package registry keeps a fixed set of named watch lists in step with one
// global sequence number.
//
// # Steps
//
// The registry owns the current sn. Advance is the only transition: it never
// moves backwards, and after moving forward it cuts every list that has a
// retention window at sn - window. Eviction happens here, eagerly, rather than
// lazily on read.
//
// # Lists
//
// The first configured name is the baseline. It is backed by an immutable list
// that always equals the universe. Every other name gets a versioned.Set. After
// construction all lists are handled through versioned.List and nothing is
// special-cased by position except ResetAll, which skips the baseline.
//
// # Validation
//
// Every operation that accepts members checks them against the universe before
// touching any list. A batch with one unknown member is rejected whole, so a
// failed call never changes state.
//
// # Concurrency
//
// A single mutex guards the whole registry. Invariants span lists (the step
// and its cutoffs), so per-list locking would not be enough.
package registry
