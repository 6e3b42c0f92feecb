package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchset/internal/store"
)

// journaledDB runs the fixture script into a fresh database under session.
func journaledDB(t *testing.T, sessions ...string) string {
	t.Helper()
	db := tempDB(t)
	for _, s := range sessions {
		_, err := execute(t, "run", "--db", db, "--session", s, "testdata/watch.cue", "testdata/ops.yaml")
		require.NoError(t, err)
	}
	return db
}

func TestReplay_AllSessions(t *testing.T) {
	db := journaledDB(t, "first", "second")

	out, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)

	assert.Contains(t, out, "Replay Summary: 2 session(s)")
	assert.Contains(t, out, "✓ Session: first")
	assert.Contains(t, out, "✓ Session: second")
	assert.Contains(t, out, "Ops: 6, current sn: 2")
	assert.Contains(t, out, "✓ All sessions verified deterministic")
}

func TestReplay_SingleSessionJSON(t *testing.T) {
	db := journaledDB(t, "first", "second")

	out, err := execute(t, "replay", "--db", db, "--session", "second", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Sessions, 1)

	s := resp.Data.Sessions[0]
	assert.Equal(t, "second", s.Session)
	assert.Equal(t, int64(6), s.Ops)
	assert.Equal(t, int64(2), s.CurrentSN)
	assert.Equal(t, map[string]int{"advance": 2, "add": 3, "set": 1}, s.Kinds)
	assert.True(t, s.Deterministic)
}

func TestReplay_EmptyDatabase(t *testing.T) {
	db := tempDB(t)
	st, err := store.Open(db)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions found in database.")
}

func TestReplay_UnknownSession(t *testing.T) {
	db := journaledDB(t, "first")

	_, err := execute(t, "replay", "--db", db, "--session", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplay_MissingDatabase(t *testing.T) {
	_, err := execute(t, "replay", "--db", tempDB(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database not found")
}
