package versioned

import "cmp"

// Immutable is the baseline list. It always holds the full universe and
// ignores every mutation.
type Immutable[M cmp.Ordered] struct {
	universe Members[M]
}

// NewImmutable fixes the list to universe. The set is copied.
func NewImmutable[M cmp.Ordered](universe Members[M]) *Immutable[M] {
	return &Immutable[M]{universe: universe.Clone()}
}

func (l *Immutable[M]) Add(int64, Members[M])         {}
func (l *Immutable[M]) Set(int64, Members[M])         {}
func (l *Immutable[M]) Remove(int64, Members[M])      {}
func (l *Immutable[M]) RemoveUntil(int64, Members[M]) {}
func (l *Immutable[M]) Reset()                        {}
func (l *Immutable[M]) ResetTo(int64, Members[M])     {}
func (l *Immutable[M]) Cut(int64) int                 { return 0 }

// Get ignores sn and returns the universe.
func (l *Immutable[M]) Get(int64) Members[M] { return l.universe.Clone() }

// GetUntil ignores sn and returns the universe.
func (l *Immutable[M]) GetUntil(int64) Members[M] { return l.universe.Clone() }

// Entries reports the universe as a single entry with no step.
func (l *Immutable[M]) Entries() []Entry[M] {
	return []Entry[M]{{Members: Sorted(l.universe)}}
}

// Len is zero: the baseline keeps no step history.
func (l *Immutable[M]) Len() int { return 0 }

// Mutable is always false for Immutable.
func (l *Immutable[M]) Mutable() bool { return false }
