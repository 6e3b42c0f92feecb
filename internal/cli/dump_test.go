package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchset/internal/dump"
)

func TestDump_Text(t *testing.T) {
	db := journaledDB(t, "cli-session")

	out, err := execute(t, "dump", "--db", db, "--session", "cli-session")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "dump_text", []byte(out))
}

func TestDump_JSON(t *testing.T) {
	db := journaledDB(t, "cli-session")

	out, err := execute(t, "dump", "--db", db, "--session", "cli-session", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   dump.State `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "cli-session", resp.Data.Session)
	assert.Equal(t, int64(2), resp.Data.CurrentSN)
	require.Len(t, resp.Data.Lists, 3)
	assert.Equal(t, "watch", resp.Data.Lists[1].Name)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Data.Lists[1].Active)
}

func TestDump_UnknownSession(t *testing.T) {
	db := journaledDB(t, "cli-session")

	_, err := execute(t, "dump", "--db", db, "--session", "missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "session not found: missing")
}

func TestDump_RequiresSession(t *testing.T) {
	_, err := execute(t, "dump", "--db", tempDB(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "session" not set`)
}
