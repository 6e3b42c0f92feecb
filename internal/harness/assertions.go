package harness

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/watchset/internal/engine"
	"github.com/roach88/watchset/internal/store"
	"github.com/roach88/watchset/internal/testutil"
)

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// AssertionContext gives assertions access to the finished run.
type AssertionContext struct {
	Ctx    context.Context
	Store  *store.Store
	Engine *engine.Engine
}

// assertFinalState queries a list at current+pos, either exactly or as the
// union of every step up to it.
func assertFinalState(actx *AssertionContext, a Assertion) error {
	reg := actx.Engine.Registry()
	var (
		got []string
		err error
	)
	if a.Until {
		got, err = reg.GetUntil(a.List, a.Pos)
	} else {
		got, err = reg.Get(a.List, a.Pos)
	}
	if err != nil {
		return fmt.Errorf("final_state %s: %w", a.List, err)
	}

	want := sortedCopy(a.Members)
	if !slices.Equal(want, got) {
		query := "get"
		if a.Until {
			query = "get_until"
		}
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s(%s, %d) = %v", query, a.List, a.Pos, want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertCurrentSN(actx *AssertionContext, a Assertion) error {
	if got := actx.Engine.Registry().Current(); got != a.SN {
		return &AssertionError{
			Type:     AssertCurrentSN,
			Expected: fmt.Sprintf("sn %d", a.SN),
			Actual:   fmt.Sprintf("sn %d", got),
		}
	}
	return nil
}

func assertJournalCount(actx *AssertionContext, a Assertion) error {
	records, err := actx.Store.ReadOps(actx.Ctx, actx.Engine.SessionID())
	if err != nil {
		return fmt.Errorf("journal_count: %w", err)
	}
	if len(records) != a.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d journaled ops", a.Count),
			Actual:   fmt.Sprintf("%d journaled ops", len(records)),
		}
	}
	return nil
}

// assertReplayMatches rebuilds the registry from the journal and compares it
// with the live one.
func assertReplayMatches(actx *AssertionContext) error {
	replayed, err := engine.Replay(actx.Ctx, actx.Store, actx.Engine.SessionID(),
		engine.WithLogger(testutil.DiscardLogger()))
	if err != nil {
		return fmt.Errorf("replay_matches: %w", err)
	}
	live, again := actx.Engine.Snapshot(), replayed.Snapshot()
	if !reflect.DeepEqual(live, again) {
		return &AssertionError{
			Type:     AssertReplayMatches,
			Expected: fmt.Sprintf("%+v", live),
			Actual:   fmt.Sprintf("%+v", again),
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalState:
			err = assertFinalState(actx, a)
		case AssertCurrentSN:
			err = assertCurrentSN(actx, a)
		case AssertJournalCount:
			err = assertJournalCount(actx, a)
		case AssertReplayMatches:
			err = assertReplayMatches(actx)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
