package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/registry"
)

//go:embed schema.cue
var schemaSource []byte

// Loader compiles registry definitions against the embedded schema. A Loader
// owns one CUE context; values from different loaders must not be mixed.
type Loader struct {
	ctx    *cue.Context
	schema cue.Value
}

func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()
	root := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := root.Err(); err != nil {
		return nil, fromCUE(ErrCodeBuildFailed, err)
	}
	return &Loader{
		ctx:    ctx,
		schema: root.LookupPath(cue.ParsePath("#Registry")),
	}, nil
}

// LoadFile compiles a single CUE file.
func LoadFile(path string) (registry.Config[string], error) {
	l, err := NewLoader()
	if err != nil {
		return registry.Config[string]{}, err
	}
	return l.LoadFile(path)
}

// LoadDir compiles every .cue file in dir as one CUE instance.
func LoadDir(dir string) (registry.Config[string], error) {
	l, err := NewLoader()
	if err != nil {
		return registry.Config[string]{}, err
	}
	return l.LoadDir(dir)
}

// Load picks LoadDir or LoadFile depending on what path is.
func Load(path string) (registry.Config[string], error) {
	info, err := os.Stat(path)
	if err != nil {
		return registry.Config[string]{}, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

func (l *Loader) LoadFile(path string) (registry.Config[string], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return registry.Config[string]{}, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return l.CompileBytes(data, path)
}

func (l *Loader) LoadDir(dir string) (registry.Config[string], error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return registry.Config[string]{}, &Error{Code: ErrCodeGeneric, Message: err.Error()}
	}
	if len(files) == 0 {
		return registry.Config[string]{}, &Error{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return registry.Config[string]{}, &Error{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return registry.Config[string]{}, fromCUE(ErrCodeLoadFailed, inst.Err)
	}
	v := l.ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return registry.Config[string]{}, fromCUE(ErrCodeBuildFailed, err)
	}
	return l.Compile(v)
}

// CompileBytes compiles CUE source; filename is used in error positions.
func (l *Loader) CompileBytes(src []byte, filename string) (registry.Config[string], error) {
	v := l.ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return registry.Config[string]{}, fromCUE(ErrCodeBuildFailed, err)
	}
	return l.Compile(v)
}

// CompileData checks plain Go data (as decoded from YAML or JSON) shaped like
// the body of a `registry` field.
func (l *Loader) CompileData(data any) (registry.Config[string], error) {
	v := l.ctx.Encode(data)
	if err := v.Err(); err != nil {
		return registry.Config[string]{}, fromCUE(ErrCodeBuildFailed, err)
	}
	return l.compileRegistry(v)
}

// Compile extracts the `registry` field of root.
func (l *Loader) Compile(root cue.Value) (registry.Config[string], error) {
	v := root.LookupPath(cue.ParsePath("registry"))
	if !v.Exists() {
		return registry.Config[string]{}, &Error{
			Code:    ErrCodeMissingRegistry,
			Field:   "registry",
			Message: "registry is required",
			Pos:     root.Pos(),
		}
	}
	return l.compileRegistry(v)
}

func (l *Loader) compileRegistry(v cue.Value) (registry.Config[string], error) {
	var cfg registry.Config[string]

	v = l.schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cfg, fromCUE(ErrCodeSchema, err)
	}

	lists, err := stringList(v.LookupPath(cue.ParsePath("lists")), "lists", ErrCodeDuplicateList, false)
	if err != nil {
		return cfg, err
	}
	universe, err := stringList(v.LookupPath(cue.ParsePath("universe")), "universe", ErrCodeDuplicateMember, true)
	if err != nil {
		return cfg, err
	}
	cfg.Lists = lists
	cfg.Universe = universe

	if cfg.BaseSN, err = intField(v, "base_sn"); err != nil {
		return cfg, err
	}
	if dw := v.LookupPath(cue.ParsePath("default_window")); dw.Exists() {
		if cfg.DefaultWindow, err = intField(v, "default_window"); err != nil {
			return cfg, err
		}
	}

	if cfg.Windows, err = windows(v.LookupPath(cue.ParsePath("windows")), lists); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, &Error{Code: ErrCodeSchema, Message: err.Error(), Pos: v.Pos()}
	}
	return cfg, nil
}

// stringList decodes a list of strings, rejecting duplicates. Members are
// normalized first so that two spellings of one symbol count as duplicates.
func stringList(v cue.Value, field, dupCode string, members bool) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, fromCUE(ErrCodeSchema, err)
	}
	var out []string
	seen := make(map[string]bool)
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		s, err := elem.String()
		if err != nil {
			return nil, fromCUE(ErrCodeSchema, err)
		}
		if !members {
			s = ir.NormalizeName(s)
		}
		if members {
			s = ir.NormalizeMember(s)
			if s == "" {
				return nil, &Error{
					Code:    ErrCodeInvalidMember,
					Field:   fmt.Sprintf("%s[%d]", field, i),
					Message: "member is blank",
					Pos:     elem.Pos(),
				}
			}
		}
		if seen[s] {
			return nil, &Error{
				Code:    dupCode,
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("duplicate %q", s),
				Pos:     elem.Pos(),
			}
		}
		seen[s] = true
		out = append(out, s)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func intField(v cue.Value, field string) (int64, error) {
	f := v.LookupPath(cue.ParsePath(field))
	if d, ok := f.Default(); ok {
		f = d
	}
	n, err := f.Int64()
	if err != nil {
		return 0, fromCUE(ErrCodeSchema, err)
	}
	return n, nil
}

func windows(v cue.Value, lists []string) (map[string]int64, error) {
	if !v.Exists() {
		return nil, nil
	}
	known := make(map[string]bool, len(lists))
	for _, n := range lists {
		known[n] = true
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, fromCUE(ErrCodeSchema, err)
	}
	out := make(map[string]int64)
	for iter.Next() {
		name := ir.NormalizeName(iter.Label())
		if !known[name] {
			return nil, &Error{
				Code:    ErrCodeUnknownWindow,
				Field:   "windows." + name,
				Message: fmt.Sprintf("window for unknown list %q", name),
				Pos:     iter.Value().Pos(),
			}
		}
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, fromCUE(ErrCodeSchema, err)
		}
		out[name] = n
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
