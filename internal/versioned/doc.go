// Package versioned implements step-indexed member sets for a single watch list.
//
// A Set records, for each logical step (sn), the members that entered the list
// at that step. Queries either look at one step (Get) or fold every retained
// step up to a bound (GetUntil). History is discarded explicitly with Cut, which
// the registry drives from its retention window.
//
// Immutable is the baseline variant: it always answers with the full universe
// and ignores every mutation, so callers can treat both variants uniformly
// through the List interface.
//
// Neither variant validates members against a universe and neither is safe for
// concurrent use. Both concerns belong to the registry.
package versioned
