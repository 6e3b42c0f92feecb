package versioned

import (
	"cmp"
	"maps"
	"slices"
)

// Set maps each step to the members that entered the list at that step.
//
// An entry emptied by Remove or RemoveUntil is deleted, so no step maps to an
// empty set as the result of a removal. Set may still store an empty entry on
// purpose; deletion goes through Remove, Reset or Cut.
type Set[M cmp.Ordered] struct {
	data map[int64]Members[M]
}

// NewSet creates an empty Set.
func NewSet[M cmp.Ordered]() *Set[M] {
	return &Set[M]{data: make(map[int64]Members[M])}
}

// Add unions members into the entry at sn, creating it if needed.
func (s *Set[M]) Add(sn int64, members Members[M]) {
	if cur, ok := s.data[sn]; ok {
		cur.Union(members)
		return
	}
	s.data[sn] = members.Clone()
}

// Set replaces the entry at sn with exactly members.
func (s *Set[M]) Set(sn int64, members Members[M]) {
	s.data[sn] = members.Clone()
}

// Remove subtracts members from the entry at sn. A step with no entry has
// nothing to remove and is left alone.
func (s *Set[M]) Remove(sn int64, members Members[M]) {
	cur, ok := s.data[sn]
	if !ok {
		return
	}
	s.subtract(sn, cur, members)
}

// RemoveUntil subtracts members from every entry at or before sn.
func (s *Set[M]) RemoveUntil(sn int64, members Members[M]) {
	for k, cur := range s.data {
		if k <= sn {
			s.subtract(k, cur, members)
		}
	}
}

func (s *Set[M]) subtract(sn int64, cur, members Members[M]) {
	cur.Subtract(members)
	if len(cur) == 0 {
		delete(s.data, sn)
	}
}

// Get returns the members recorded at exactly sn.
func (s *Set[M]) Get(sn int64) Members[M] {
	return s.data[sn].Clone()
}

// GetUntil returns the union of every entry at or before sn.
func (s *Set[M]) GetUntil(sn int64) Members[M] {
	out := make(Members[M])
	for k, cur := range s.data {
		if k <= sn {
			out.Union(cur)
		}
	}
	return out
}

// Reset drops all history.
func (s *Set[M]) Reset() {
	s.data = make(map[int64]Members[M])
}

// ResetTo drops all history and seeds a single entry at sn.
func (s *Set[M]) ResetTo(sn int64, members Members[M]) {
	s.Reset()
	s.data[sn] = members.Clone()
}

// Cut deletes every entry at or before cutoff.
func (s *Set[M]) Cut(cutoff int64) int {
	removed := 0
	for k := range s.data {
		if k <= cutoff {
			delete(s.data, k)
			removed++
		}
	}
	return removed
}

// Entries lists retained steps in ascending order.
func (s *Set[M]) Entries() []Entry[M] {
	steps := slices.Sorted(maps.Keys(s.data))
	out := make([]Entry[M], 0, len(steps))
	for _, sn := range steps {
		out = append(out, Entry[M]{SN: sn, Members: Sorted(s.data[sn])})
	}
	return out
}

// Len returns the number of retained steps.
func (s *Set[M]) Len() int { return len(s.data) }

// Mutable is always true for Set.
func (s *Set[M]) Mutable() bool { return true }
