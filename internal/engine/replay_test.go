package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/registry"
	"github.com/roach88/watchset/internal/testutil"
)

func TestReplay_ReproducesState(t *testing.T) {
	st := openStore(t)
	live := newEngine(t, WithStore(st))
	for _, op := range scenarioOps()[:8] {
		mustApply(t, live, op)
	}

	replayed, err := Replay(context.Background(), st, "session-1", WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)

	assert.Equal(t, live.Snapshot(), replayed.Snapshot())
	assert.Equal(t, "session-1", replayed.SessionID())
	assert.Equal(t, int64(7), replayed.clock.Current())
}

func TestReplay_DoesNotJournal(t *testing.T) {
	st := openStore(t)
	live := newEngine(t, WithStore(st))
	mustApply(t, live, ir.Op{Kind: ir.OpAdd, List: "watch", Members: []string{"a"}})

	replayed, err := Replay(context.Background(), st, "session-1", WithLogger(testutil.DiscardLogger()), WithStore(st))
	require.NoError(t, err)
	mustApply(t, replayed, ir.Op{Kind: ir.OpAdd, List: "hold", Members: []string{"b"}})

	last, err := st.LastSeq(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)
}

func TestReplay_UnknownSession(t *testing.T) {
	_, err := Replay(context.Background(), openStore(t), "missing", WithLogger(testutil.DiscardLogger()))
	require.Error(t, err)
}

func TestReplay_EmptySession(t *testing.T) {
	st := openStore(t)
	newEngine(t, WithStore(st))

	replayed, err := Replay(context.Background(), st, "session-1", WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	assert.Equal(t, int64(0), replayed.Registry().Current())
}

func TestVerifyReplay_Deterministic(t *testing.T) {
	st := openStore(t)
	live := newEngine(t, WithStore(st))
	for _, op := range scenarioOps() {
		mustApply(t, live, op)
	}

	res, ok, err := VerifyReplay(context.Background(), st, "session-1", WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(8), res.LastSeq)
	assert.Equal(t, live.Snapshot(), res.Snapshot)
}

func TestReplay_DivergedSN(t *testing.T) {
	st := openStore(t)
	live := newEngine(t, WithStore(st))
	mustApply(t, live, ir.Op{Kind: ir.OpAdd, List: "watch", Members: []string{"a"}})

	rec, err := ir.NewRecord("session-1", 2, ir.Op{Kind: ir.OpAdd, List: "hold", Members: []string{"b"}}, 5)
	require.NoError(t, err)
	require.NoError(t, st.AppendOp(context.Background(), rec))

	_, err = Replay(context.Background(), st, "session-1", WithLogger(testutil.DiscardLogger()))
	require.Error(t, err)
	assert.True(t, IsReplayDiverged(err))
	assert.Equal(t, string(ErrCodeReplayDiverged), CodeOf(err))

	_, _, err = VerifyReplay(context.Background(), st, "session-1", WithLogger(testutil.DiscardLogger()))
	assert.True(t, IsReplayDiverged(err))
}

func TestReplay_DecomposedListName(t *testing.T) {
	st := openStore(t)
	cfg := registry.Config[string]{
		Lists:    []string{"all", "cafe\u0301"},
		Universe: []string{"a", "b"},
		Windows:  map[string]int64{"cafe\u0301": 3},
	}
	live, err := New(context.Background(), cfg,
		WithStore(st), WithSessionID("s1"), WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	mustApply(t, live, ir.Op{Kind: ir.OpAdd, List: "cafe\u0301", Members: []string{"a"}})
	mustApply(t, live, ir.Op{Kind: ir.OpAdd, List: "caf\u00e9", Members: []string{"b"}})
	w, ok, err := live.Registry().Window("caf\u00e9")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), w)

	replayed, err := Replay(context.Background(), st, "s1", WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	assert.Equal(t, live.Snapshot(), replayed.Snapshot())

	got, err := replayed.Registry().Get("caf\u00e9", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}
