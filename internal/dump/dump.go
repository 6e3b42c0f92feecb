// Package dump renders registry state for humans and for JSON output.
package dump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/watchset/internal/registry"
	"github.com/roach88/watchset/internal/versioned"
)

// Step is one retained sn of a list.
type Step struct {
	SN      int64    `json:"sn"`
	Members []string `json:"members"`
}

type List struct {
	Name     string   `json:"name"`
	Baseline bool     `json:"baseline,omitempty"`
	Window   int64    `json:"window,omitempty"`
	Active   []string `json:"active"`
	Steps    []Step   `json:"steps,omitempty"`
}

// State is the JSON form of a registry snapshot. Active is the union of every
// retained step, i.e. what GetUntil returns at the current sn.
type State struct {
	Session   string   `json:"session,omitempty"`
	Universe  []string `json:"universe"`
	BaseSN    int64    `json:"base_sn"`
	CurrentSN int64    `json:"current_sn"`
	Lists     []List   `json:"lists"`
}

func FromSnapshot(session string, snap registry.Snapshot[string]) State {
	st := State{
		Session:   session,
		Universe:  snap.Universe,
		BaseSN:    snap.BaseSN,
		CurrentSN: snap.Current,
		Lists:     make([]List, 0, len(snap.Lists)),
	}
	for _, ls := range snap.Lists {
		l := List{Name: ls.Name, Baseline: ls.Baseline, Window: ls.Window}
		if ls.Baseline {
			l.Active = snap.Universe
			st.Lists = append(st.Lists, l)
			continue
		}
		active := versioned.Members[string]{}
		for _, e := range ls.Entries {
			l.Steps = append(l.Steps, Step{SN: e.SN, Members: e.Members})
			active.Union(versioned.Of(e.Members...))
		}
		l.Active = versioned.Sorted(active)
		st.Lists = append(st.Lists, l)
	}
	return st
}

// Write renders snap as text:
//
//	watchlists :
//	universe   : [a, b, c]
//	lists      : [baseline, watch, hold]
//	base_sn    : 0
//	current_sn : 7
//	list baseline : [a, b, c]
//	list watch (window 5) :
//	  sn 7, [a]
func Write(w io.Writer, snap registry.Snapshot[string]) error {
	names := make([]string, len(snap.Lists))
	for i, ls := range snap.Lists {
		names[i] = ls.Name
	}

	var b bytes.Buffer
	b.WriteString("watchlists :\n")
	fmt.Fprintf(&b, "universe   : %s\n", list(snap.Universe))
	fmt.Fprintf(&b, "lists      : %s\n", list(names))
	fmt.Fprintf(&b, "base_sn    : %d\n", snap.BaseSN)
	fmt.Fprintf(&b, "current_sn : %d\n", snap.Current)

	for _, ls := range snap.Lists {
		if ls.Baseline {
			fmt.Fprintf(&b, "list %s : %s\n", ls.Name, list(snap.Universe))
			continue
		}
		if ls.Window > 0 {
			fmt.Fprintf(&b, "list %s (window %d) :\n", ls.Name, ls.Window)
		} else {
			fmt.Fprintf(&b, "list %s :\n", ls.Name)
		}
		for _, e := range ls.Entries {
			fmt.Fprintf(&b, "  sn %d, %s\n", e.SN, list(e.Members))
		}
	}

	_, err := w.Write(b.Bytes())
	return err
}

// String is Write into a string.
func String(snap registry.Snapshot[string]) string {
	var b strings.Builder
	_ = Write(&b, snap)
	return b.String()
}

func list(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
