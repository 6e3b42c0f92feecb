package versioned

import "cmp"

// Entry is one retained step of a list: the members recorded at SN.
type Entry[M cmp.Ordered] struct {
	SN      int64 `json:"sn"`
	Members []M   `json:"members"`
}

// List is the contract shared by Set and Immutable.
//
// Mutations take the step they apply to; queries take the step they are
// evaluated at. Returned sets are copies and may be modified by the caller.
type List[M cmp.Ordered] interface {
	Add(sn int64, members Members[M])
	Set(sn int64, members Members[M])
	Remove(sn int64, members Members[M])
	RemoveUntil(sn int64, members Members[M])
	Get(sn int64) Members[M]
	GetUntil(sn int64) Members[M]
	Reset()
	ResetTo(sn int64, members Members[M])

	// Cut deletes every entry at or before cutoff and reports how many went.
	Cut(cutoff int64) int

	// Entries lists retained steps in ascending sn order.
	Entries() []Entry[M]
	Len() int
	Mutable() bool
}

var (
	_ List[string] = (*Set[string])(nil)
	_ List[string] = (*Immutable[string])(nil)
)
