package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/roach88/watchset/internal/registry"
	"github.com/roach88/watchset/internal/store"
)

// ReplayResult summarizes a replayed session.
type ReplayResult struct {
	SessionID string
	LastSeq   int64
	Snapshot  registry.Snapshot[string]
}

// Replay rebuilds the engine for sessionID from st's journal.
//
// The returned engine has no store attached: replaying never writes to the
// journal. Any WithStore option in opts is ignored. Every record is checked
// against the sn it was journaled at.
func Replay(ctx context.Context, st *store.Store, sessionID string, opts ...Option) (*Engine, error) {
	sess, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	records, err := st.ReadOps(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("read ops: %w", err)
	}

	opts = append(opts, WithSessionID(sessionID), WithStore(nil))
	e, err := New(ctx, sess.Config, opts...)
	if err != nil {
		return nil, fmt.Errorf("rebuild registry: %w", err)
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := e.apply(rec.Op)
		if err != nil {
			return nil, fmt.Errorf("replay seq %d: %w", rec.Seq, err)
		}
		if res.SN != rec.CurrentSN {
			return nil, &Error{
				Code:    ErrCodeReplayDiverged,
				Message: fmt.Sprintf("journaled at sn %d, replayed at sn %d", rec.CurrentSN, res.SN),
				Kind:    string(rec.Op.Kind),
				Seq:     rec.Seq,
			}
		}
		if e.metrics != nil {
			e.metrics.ObserveOp(string(rec.Op.Kind), true)
		}
	}

	if n := len(records); n > 0 {
		e.clock = NewClockAt(records[n-1].Seq)
	}
	if e.metrics != nil {
		e.metrics.SetCurrentSN(e.reg.Current())
		e.recordRetained()
	}
	e.logger.Debug("session replayed", "session", sessionID, "ops", len(records))
	return e, nil
}

// VerifyReplay replays sessionID twice and reports whether both runs reach
// the same snapshot. The first run's result is returned either way.
func VerifyReplay(ctx context.Context, st *store.Store, sessionID string, opts ...Option) (ReplayResult, bool, error) {
	first, err := Replay(ctx, st, sessionID, opts...)
	if err != nil {
		return ReplayResult{}, false, err
	}
	second, err := Replay(ctx, st, sessionID, opts...)
	if err != nil {
		return ReplayResult{}, false, err
	}

	snap := first.Snapshot()
	res := ReplayResult{
		SessionID: sessionID,
		LastSeq:   first.clock.Current(),
		Snapshot:  snap,
	}
	return res, reflect.DeepEqual(snap, second.Snapshot()), nil
}
