package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchset/internal/config"
	"github.com/roach88/watchset/internal/engine"
	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/registry"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(map[string]string{"result": "success"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E203", "duplicate list", map[string]any{"line": 2})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E203", resp.Error.Code)
	assert.Equal(t, "duplicate list", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	require.NoError(t, formatter.Error("E005", "config not found", "watch.cue"))
	assert.Contains(t, buf.String(), "Error [E005]: config not found")
	assert.Contains(t, buf.String(), "Details: watch.cue")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}

	formatter.VerboseLog("quiet")
	assert.Empty(t, errOut.String())

	formatter.Verbose = true
	formatter.VerboseLog("loading %s", "watch.cue")
	assert.Equal(t, "loading watch.cue\n", errOut.String())
	assert.Empty(t, out.String(), "verbose output must not corrupt JSON on stdout")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"exit error", NewExitError(ExitCommandError, "missing"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", NewExitError(ExitFailure, "bad")), ExitFailure},
		{"plain error", errors.New("flag parse"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to write", inner)

	assert.Equal(t, "failed to write: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestErrorCode(t *testing.T) {
	_, cfgErr := config.Load("testdata/invalid.cue")
	require.Error(t, cfgErr)
	assert.Equal(t, config.ErrCodeDuplicateList, errorCode(cfgErr))

	eng, err := engine.New(context.Background(), registry.Config[string]{
		Lists:    []string{"baseline", "watch"},
		Universe: []string{"a"},
	}, engine.WithSessionID("codes"))
	require.NoError(t, err)

	_, err = eng.Apply(context.Background(), ir.Op{Kind: ir.OpAdd, List: "watch", Members: []string{"z"}})
	assert.Equal(t, string(registry.ErrCodeInvalidMember), errorCode(err))

	_, err = eng.Apply(context.Background(), ir.Op{Kind: ir.OpGet, List: "watch", Pos: 1})
	assert.Equal(t, string(engine.ErrCodeInvalidOp), errorCode(err))

	assert.Equal(t, config.ErrCodeGeneric, errorCode(errors.New("boom")))
}

func TestErrorDetails(t *testing.T) {
	assert.Nil(t, errorDetails(errors.New("boom")))
	assert.Nil(t, errorDetails(&config.Error{Code: config.ErrCodeSchema, Message: "no position"}))
}
