package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	out, err := execute(t, "validate", "testdata/watch.cue")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ testdata/watch.cue is valid")
	assert.Contains(t, out, "lists    : baseline, watch, hold (baseline baseline)")
	assert.Contains(t, out, "members  : 3")
	assert.Contains(t, out, "window   : watch=5")
}

func TestValidate_JSON(t *testing.T) {
	out, err := execute(t, "validate", "testdata/watch.cue", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"baseline", "watch", "hold"}, resp.Data.Lists)
	assert.Equal(t, "baseline", resp.Data.Baseline)
	assert.Equal(t, 3, resp.Data.Members)
	assert.Equal(t, map[string]int64{"watch": 5}, resp.Data.Windows)
}

func TestValidate_InvalidConfig(t *testing.T) {
	out, err := execute(t, "validate", "testdata/invalid.cue", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E203", resp.Error.Code)
}

func TestValidate_MissingConfig(t *testing.T) {
	out, err := execute(t, "validate", "testdata/nope.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
