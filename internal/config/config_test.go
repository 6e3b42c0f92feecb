package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/watchset/internal/registry"
)

func compile(t *testing.T, src string) (registry.Config[string], error) {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l.CompileBytes([]byte(src), "test.cue")
}

func requireCode(t *testing.T, err error, code string) *Error {
	t.Helper()
	require.Error(t, err)
	var ce *Error
	require.True(t, errors.As(err, &ce), "expected *config.Error, got %T: %v", err, err)
	assert.Equal(t, code, ce.Code, "error: %v", err)
	return ce
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "watch.cue"))
	require.NoError(t, err)

	assert.Equal(t, []string{"baseline", "watch", "hold"}, cfg.Lists)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Universe)
	assert.Equal(t, int64(0), cfg.BaseSN)
	assert.Equal(t, int64(0), cfg.DefaultWindow)
	assert.Equal(t, map[string]int64{"watch": 5}, cfg.Windows)
}

func TestLoadDir(t *testing.T) {
	cfg, err := LoadDir(filepath.Join("testdata", "split"))
	require.NoError(t, err)

	assert.Equal(t, []string{"all", "longs", "shorts"}, cfg.Lists)
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA"}, cfg.Universe)
	assert.Equal(t, int64(100), cfg.BaseSN)
	assert.Equal(t, int64(20), cfg.DefaultWindow)
	assert.Equal(t, map[string]int64{"shorts": 3}, cfg.Windows)
}

func TestLoad_DispatchesOnPathKind(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "split"))
	require.NoError(t, err)
	_, err = Load(filepath.Join("testdata", "watch.cue"))
	require.NoError(t, err)

	_, err = Load(filepath.Join("testdata", "missing.cue"))
	requireCode(t, err, ErrCodeNotFound)
}

func TestLoadDir_NoFiles(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	requireCode(t, err, ErrCodeNoFiles)
}

func TestCompile_MissingRegistry(t *testing.T) {
	_, err := compile(t, `other: 1`)
	requireCode(t, err, ErrCodeMissingRegistry)
}

func TestCompile_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no lists", `registry: { lists: [], universe: [] }`},
		{"empty list name", `registry: { lists: ["base", ""], universe: [] }`},
		{"zero window", `registry: { lists: ["base", "w"], universe: [], windows: w: 0 }`},
		{"negative default window", `registry: { lists: ["base"], universe: [], default_window: -1 }`},
		{"unknown field", `registry: { lists: ["base"], universe: [], trading: true }`},
		{"non-string member", `registry: { lists: ["base"], universe: [1] }`},
		{"non-integer base", `registry: { lists: ["base"], universe: [], base_sn: 1.5 }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src)
			requireCode(t, err, ErrCodeSchema)
		})
	}
}

func TestCompile_DuplicateList(t *testing.T) {
	_, err := compile(t, `registry: {
	lists: ["base", "w", "w"]
	universe: []
}`)
	ce := requireCode(t, err, ErrCodeDuplicateList)
	assert.Equal(t, "lists[2]", ce.Field)
}

func TestCompile_DuplicateMemberAfterNormalization(t *testing.T) {
	_, err := compile(t, `registry: {
	lists: ["base"]
	universe: ["\u00e9", "e\u0301"]
}`)
	ce := requireCode(t, err, ErrCodeDuplicateMember)
	assert.Equal(t, "universe[1]", ce.Field)
}

func TestCompile_BlankMember(t *testing.T) {
	_, err := compile(t, `registry: { lists: ["base"], universe: ["a", "  "] }`)
	requireCode(t, err, ErrCodeInvalidMember)
}

func TestCompile_UnknownWindow(t *testing.T) {
	_, err := compile(t, `registry: {
	lists: ["base", "w"]
	universe: []
	windows: x: 3
}`)
	ce := requireCode(t, err, ErrCodeUnknownWindow)
	assert.Equal(t, "windows.x", ce.Field)
}

func TestCompile_NormalizesMembers(t *testing.T) {
	cfg, err := compile(t, `registry: { lists: ["base"], universe: [" AAPL ", "e\u0301"] }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "\u00e9"}, cfg.Universe)
}

func TestCompile_NormalizesListNames(t *testing.T) {
	cfg, err := compile(t, `registry: {
	lists: ["base", "cafe\u0301"]
	universe: ["a"]
	windows: "cafe\u0301": 3
}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "caf\u00e9"}, cfg.Lists)
	assert.Equal(t, map[string]int64{"caf\u00e9": 3}, cfg.Windows)

	_, err = compile(t, `registry: { lists: ["base", "caf\u00e9", "cafe\u0301"] }`)
	requireCode(t, err, ErrCodeDuplicateList)
}

func TestCompile_EmptyUniverseDefaults(t *testing.T) {
	cfg, err := compile(t, `registry: lists: ["base", "w"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{}, cfg.Universe)
	assert.Nil(t, cfg.Windows)
}

func TestCompileData(t *testing.T) {
	l, err := NewLoader()
	require.NoError(t, err)

	cfg, err := l.CompileData(map[string]any{
		"lists":    []any{"baseline", "watch"},
		"universe": []any{"a", "b"},
		"windows":  map[string]any{"watch": 2},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"watch": 2}, cfg.Windows)

	_, err = l.CompileData(map[string]any{"lists": []any{"baseline"}, "windows": map[string]any{"nope": 1}})
	requireCode(t, err, ErrCodeUnknownWindow)
}

func TestCompiledConfigBuildsRegistry(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("testdata", "watch.cue"))
	require.NoError(t, err)

	reg, err := registry.New(cfg)
	require.NoError(t, err)
	w, ok, err := reg.Window("watch")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(5), w)
}

func TestError_Format(t *testing.T) {
	e := &Error{Code: ErrCodeSchema, Field: "lists", Message: "bad"}
	assert.Equal(t, "E202 lists: bad", e.Error())
}
