package versioned

import (
	"cmp"
	"maps"
	"slices"
)

// Members is an unordered set of list members.
type Members[M comparable] map[M]struct{}

// Of builds a Members set from a slice. Duplicates collapse.
func Of[M comparable](items ...M) Members[M] {
	s := make(Members[M], len(items))
	for _, m := range items {
		s[m] = struct{}{}
	}
	return s
}

// Contains reports whether m is in the set.
func (s Members[M]) Contains(m M) bool {
	_, ok := s[m]
	return ok
}

// Clone returns an independent copy. A nil set clones to an empty one.
func (s Members[M]) Clone() Members[M] {
	out := make(Members[M], len(s))
	maps.Copy(out, s)
	return out
}

// Union adds every member of other to s.
func (s Members[M]) Union(other Members[M]) {
	maps.Copy(s, other)
}

// Subtract removes every member of other from s.
func (s Members[M]) Subtract(other Members[M]) {
	for m := range other {
		delete(s, m)
	}
}

// Sorted returns the members in their natural order.
func Sorted[M cmp.Ordered](s Members[M]) []M {
	out := slices.Sorted(maps.Keys(s))
	if out == nil {
		out = []M{}
	}
	return out
}
