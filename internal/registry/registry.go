package registry

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/watchset/internal/versioned"
)

// EvictionObserver is told about every cut that removed at least one entry.
type EvictionObserver interface {
	Evicted(list string, cutoff int64, removed int, retained int)
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer EvictionObserver
}

// WithLogger sets the logger used for eviction diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEvictionObserver registers an observer for cuts driven by Advance.
func WithEvictionObserver(obs EvictionObserver) Option {
	return func(o *options) { o.observer = obs }
}

// Registry is the set of named lists sharing one sn.
type Registry[M cmp.Ordered] struct {
	mu sync.Mutex

	cfg      Config[M]
	clock    *StepClock
	universe versioned.Members[M]
	lists    map[string]versioned.List[M]
	windows  map[string]int64

	logger   *slog.Logger
	observer EvictionObserver
}

// New builds a registry. The config is copied; later changes to cfg do not
// affect the registry.
func New[M cmp.Ordered](cfg Config[M], opts ...Option) (*Registry[M], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Registry[M]{
		cfg:      cfg,
		clock:    NewStepClock(cfg.BaseSN),
		universe: versioned.Of(cfg.Universe...),
		lists:    make(map[string]versioned.List[M], len(cfg.Lists)),
		windows:  make(map[string]int64, len(cfg.Lists)),
		logger:   o.logger,
		observer: o.observer,
	}

	for i, name := range cfg.Lists {
		if i == 0 {
			r.lists[name] = versioned.NewImmutable(r.universe)
		} else {
			r.lists[name] = versioned.NewSet[M]()
		}

		if w, ok := cfg.Windows[name]; ok {
			r.windows[name] = w
		} else if cfg.DefaultWindow > 0 {
			r.windows[name] = cfg.DefaultWindow
		}
	}

	return r, nil
}

// Current returns the current sn.
func (r *Registry[M]) Current() int64 {
	return r.clock.Current()
}

// BaseSN returns the sn the registry started at.
func (r *Registry[M]) BaseSN() int64 {
	return r.cfg.BaseSN
}

// Names returns the list names in configuration order.
func (r *Registry[M]) Names() []string {
	return slices.Clone(r.cfg.Lists)
}

// Baseline returns the name of the immutable list.
func (r *Registry[M]) Baseline() string {
	return r.cfg.Lists[0]
}

// Universe returns the valid members in natural order.
func (r *Registry[M]) Universe() []M {
	return versioned.Sorted(r.universe)
}

// Config returns a copy of the configuration the registry was built with.
func (r *Registry[M]) Config() Config[M] {
	return r.cfg.Clone()
}

// Window reports the retention window in effect for a list.
func (r *Registry[M]) Window(name string) (int64, bool, error) {
	if _, ok := r.lists[name]; !ok {
		return 0, false, newListError(name)
	}
	w, ok := r.windows[name]
	return w, ok, nil
}

// Advance moves the current sn to sn and evicts history that fell out of
// every list's window. Moving backwards fails and changes nothing.
func (r *Registry[M]) Advance(sn int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.clock.AdvanceTo(sn); err != nil {
		return err
	}

	for _, name := range r.cfg.Lists {
		w, ok := r.windows[name]
		if !ok {
			continue
		}
		list := r.lists[name]
		cutoff := sn - w
		removed := list.Cut(cutoff)
		if removed == 0 {
			continue
		}
		r.logger.Debug("evicted list history",
			"list", name,
			"cutoff", cutoff,
			"removed", removed,
		)
		if r.observer != nil {
			r.observer.Evicted(name, cutoff, removed, list.Len())
		}
	}

	return nil
}

// Get returns the members recorded at exactly current+pos.
func (r *Registry[M]) Get(name string, pos int64) ([]M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, sn, err := r.at(name, pos)
	if err != nil {
		return nil, err
	}
	return versioned.Sorted(list.Get(sn)), nil
}

// GetUntil returns every member recorded at or before current+pos.
func (r *Registry[M]) GetUntil(name string, pos int64) ([]M, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, sn, err := r.at(name, pos)
	if err != nil {
		return nil, err
	}
	return versioned.Sorted(list.GetUntil(sn)), nil
}

// Add records members as entering name at the current sn.
func (r *Registry[M]) Add(name string, members []M) error {
	return r.mutate(name, members, func(l versioned.List[M], sn int64, m versioned.Members[M]) {
		l.Add(sn, m)
	})
}

// Set makes members the exact contribution of name at the current sn.
func (r *Registry[M]) Set(name string, members []M) error {
	return r.mutate(name, members, func(l versioned.List[M], sn int64, m versioned.Members[M]) {
		l.Set(sn, m)
	})
}

// Remove takes members out of name's entry at the current sn.
func (r *Registry[M]) Remove(name string, members []M) error {
	return r.mutate(name, members, func(l versioned.List[M], sn int64, m versioned.Members[M]) {
		l.Remove(sn, m)
	})
}

// RemoveUntil takes members out of every entry of name at or before current+pos.
func (r *Registry[M]) RemoveUntil(name string, members []M, pos int64) error {
	if pos > 0 {
		return newOffsetError(name, pos)
	}
	return r.mutate(name, members, func(l versioned.List[M], sn int64, m versioned.Members[M]) {
		l.RemoveUntil(sn+pos, m)
	})
}

// Move removes members from one list and adds them to another at the current
// sn. Both names and all members are checked first; once they pass neither
// half can fail.
func (r *Registry[M]) Move(from string, members []M, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, err := r.list(from)
	if err != nil {
		return err
	}
	dst, err := r.list(to)
	if err != nil {
		return err
	}
	set, err := r.validate(from, members)
	if err != nil {
		return err
	}

	sn := r.clock.Current()
	src.Remove(sn, set)
	dst.Add(sn, set)
	return nil
}

// Reset clears all history of name.
func (r *Registry[M]) Reset(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.list(name)
	if err != nil {
		return err
	}
	list.Reset()
	return nil
}

// ResetTo clears all history of name and seeds it with members at the
// current sn.
func (r *Registry[M]) ResetTo(name string, members []M) error {
	return r.mutate(name, members, func(l versioned.List[M], sn int64, m versioned.Members[M]) {
		l.ResetTo(sn, m)
	})
}

// ResetAll clears every list except the baseline.
func (r *Registry[M]) ResetAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.cfg.Lists[1:] {
		r.lists[name].Reset()
	}
}

// Entries returns the retained history of one list, oldest first.
func (r *Registry[M]) Entries(name string) ([]versioned.Entry[M], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.list(name)
	if err != nil {
		return nil, err
	}
	return list.Entries(), nil
}

// ListState is the retained history of one list at snapshot time.
type ListState[M cmp.Ordered] struct {
	Name     string               `json:"name"`
	Baseline bool                 `json:"baseline"`
	Window   int64                `json:"window,omitempty"`
	Entries  []versioned.Entry[M] `json:"entries"`
}

// Snapshot is a consistent read of the whole registry.
type Snapshot[M cmp.Ordered] struct {
	Universe []M            `json:"universe"`
	BaseSN   int64          `json:"base_sn"`
	Current  int64          `json:"current_sn"`
	Lists    []ListState[M] `json:"lists"`
}

// Snapshot captures every list under one lock acquisition.
func (r *Registry[M]) Snapshot() Snapshot[M] {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot[M]{
		Universe: versioned.Sorted(r.universe),
		BaseSN:   r.cfg.BaseSN,
		Current:  r.clock.Current(),
		Lists:    make([]ListState[M], 0, len(r.cfg.Lists)),
	}
	for i, name := range r.cfg.Lists {
		snap.Lists = append(snap.Lists, ListState[M]{
			Name:     name,
			Baseline: i == 0,
			Window:   r.windows[name],
			Entries:  r.lists[name].Entries(),
		})
	}
	return snap
}

// RetainedEntries returns the number of steps each list keeps.
func (r *Registry[M]) RetainedEntries() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]int, len(r.lists))
	for name, l := range r.lists {
		out[name] = l.Len()
	}
	return out
}

// mutate runs fn on name's list at the current sn after validating members.
func (r *Registry[M]) mutate(name string, members []M, fn func(versioned.List[M], int64, versioned.Members[M])) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.list(name)
	if err != nil {
		return err
	}
	set, err := r.validate(name, members)
	if err != nil {
		return err
	}
	fn(list, r.clock.Current(), set)
	return nil
}

func (r *Registry[M]) at(name string, pos int64) (versioned.List[M], int64, error) {
	list, err := r.list(name)
	if err != nil {
		return nil, 0, err
	}
	if pos > 0 {
		return nil, 0, newOffsetError(name, pos)
	}
	return list, r.clock.Current() + pos, nil
}

func (r *Registry[M]) list(name string) (versioned.List[M], error) {
	l, ok := r.lists[name]
	if !ok {
		return nil, newListError(name)
	}
	return l, nil
}

// validate rejects the whole batch if any member is outside the universe.
func (r *Registry[M]) validate(name string, members []M) (versioned.Members[M], error) {
	set := versioned.Of(members...)
	var unknown []M
	for m := range set {
		if !r.universe.Contains(m) {
			unknown = append(unknown, m)
		}
	}
	if len(unknown) == 0 {
		return set, nil
	}

	slices.Sort(unknown)
	names := make([]string, len(unknown))
	for i, m := range unknown {
		names[i] = fmt.Sprint(m)
	}
	return nil, &Error{
		Code:    ErrCodeInvalidMember,
		Message: fmt.Sprintf("%d member(s) not in universe", len(unknown)),
		List:    name,
		Members: names,
	}
}
