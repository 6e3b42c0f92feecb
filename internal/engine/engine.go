package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/metrics"
	"github.com/roach88/watchset/internal/registry"
	"github.com/roach88/watchset/internal/store"
)

// Engine applies operations to one registry and journals the mutations.
//
// Apply is safe for concurrent use. mu covers both the registry call and the
// journal write, so journal seq order is the order ops were applied in.
type Engine struct {
	mu sync.Mutex

	reg       *registry.Registry[string]
	store     *store.Store
	clock     *Clock
	sessionID string
	gen       SessionIDGenerator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

type Option func(*Engine)

// WithStore journals every successful mutation to st.
func WithStore(st *store.Store) Option {
	return func(e *Engine) { e.store = st }
}

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(e *Engine) { e.sessionID = id }
}

func WithSessionGenerator(g SessionIDGenerator) Option {
	return func(e *Engine) { e.gen = g }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Result is the outcome of one applied op.
type Result struct {
	Kind    ir.OpKind `json:"kind"`
	SN      int64     `json:"sn"`
	Members []string  `json:"members,omitempty"`
	Seq     int64     `json:"seq,omitempty"`
}

// New builds the registry for cfg and, with a store attached, writes the
// session record before any op can be journaled.
func New(ctx context.Context, cfg registry.Config[string], opts ...Option) (*Engine, error) {
	e := &Engine{
		clock:  NewClock(),
		gen:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sessionID == "" {
		e.sessionID = e.gen.Generate()
	}

	cfg = cfg.Clone()
	for i, name := range cfg.Lists {
		cfg.Lists[i] = ir.NormalizeName(name)
	}
	cfg.Universe = ir.NormalizeMembers(cfg.Universe)
	if cfg.Windows != nil {
		windows := make(map[string]int64, len(cfg.Windows))
		for name, w := range cfg.Windows {
			windows[ir.NormalizeName(name)] = w
		}
		cfg.Windows = windows
	}

	regOpts := []registry.Option{registry.WithLogger(e.logger)}
	if e.metrics != nil {
		regOpts = append(regOpts, registry.WithEvictionObserver(e.metrics))
	}
	reg, err := registry.New(cfg, regOpts...)
	if err != nil {
		return nil, err
	}
	e.reg = reg

	if e.store != nil {
		sess, err := store.NewSession(e.sessionID, reg.Config())
		if err != nil {
			return nil, fmt.Errorf("build session: %w", err)
		}
		if err := e.store.WriteSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("write session: %w", err)
		}
	}

	if e.metrics != nil {
		e.metrics.SetCurrentSN(reg.Current())
		e.recordRetained()
	}

	e.logger.Debug("engine started",
		"session", e.sessionID,
		"lists", len(cfg.Lists),
		"base_sn", cfg.BaseSN,
		"journal", e.store != nil)
	return e, nil
}

func (e *Engine) SessionID() string { return e.sessionID }

// Registry exposes the underlying registry for read access.
func (e *Engine) Registry() *registry.Registry[string] { return e.reg }

func (e *Engine) Snapshot() registry.Snapshot[string] { return e.reg.Snapshot() }

// Apply validates op, runs it against the registry and journals it if it
// mutated state. A rejected op leaves both registry and journal untouched.
//
// If the journal append fails the registry has already changed; the returned
// error has code JOURNAL_FAILED.
func (e *Engine) Apply(ctx context.Context, op ir.Op) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	op = op.Normalized()
	res, err := e.apply(op)
	if e.metrics != nil {
		e.metrics.ObserveOp(string(op.Kind), err == nil)
	}
	if err != nil {
		e.logger.Debug("op rejected", "kind", op.Kind, "list", op.List, "error", err)
		return Result{}, err
	}

	if !op.IsQuery() {
		if e.metrics != nil {
			e.metrics.SetCurrentSN(res.SN)
			e.recordRetained()
		}
		if e.store != nil {
			seq := e.clock.Next()
			if err := e.journal(ctx, seq, op, res.SN); err != nil {
				return res, &Error{
					Code:    ErrCodeJournal,
					Message: "op applied but not journaled",
					Kind:    string(op.Kind),
					Seq:     seq,
					Err:     err,
				}
			}
			res.Seq = seq
		}
	}

	e.logger.Debug("op applied", "kind", op.Kind, "list", op.List, "sn", res.SN, "seq", res.Seq)
	return res, nil
}

// apply routes op to the registry without journaling.
func (e *Engine) apply(op ir.Op) (Result, error) {
	if err := op.Validate(); err != nil {
		return Result{}, &Error{Code: ErrCodeInvalidOp, Message: err.Error(), Kind: string(op.Kind)}
	}

	var (
		members []string
		err     error
	)
	switch op.Kind {
	case ir.OpAdvance:
		err = e.reg.Advance(op.SN)
	case ir.OpAdd:
		err = e.reg.Add(op.List, op.Members)
	case ir.OpSet:
		err = e.reg.Set(op.List, op.Members)
	case ir.OpRemove:
		err = e.reg.Remove(op.List, op.Members)
	case ir.OpRemoveUntil:
		err = e.reg.RemoveUntil(op.List, op.Members, op.Pos)
	case ir.OpMove:
		err = e.reg.Move(op.List, op.Members, op.To)
	case ir.OpReset:
		// An empty member list is a plain reset; seeding an empty step would
		// not survive the journal round trip.
		if len(op.Members) > 0 {
			err = e.reg.ResetTo(op.List, op.Members)
		} else {
			err = e.reg.Reset(op.List)
		}
	case ir.OpResetAll:
		e.reg.ResetAll()
	case ir.OpGet:
		members, err = e.reg.Get(op.List, op.Pos)
	case ir.OpGetUntil:
		members, err = e.reg.GetUntil(op.List, op.Pos)
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op.Kind, err)
	}
	return Result{Kind: op.Kind, SN: e.reg.Current(), Members: members}, nil
}

func (e *Engine) journal(ctx context.Context, seq int64, op ir.Op, sn int64) error {
	rec, err := ir.NewRecord(e.sessionID, seq, op, sn)
	if err != nil {
		return fmt.Errorf("build record: %w", err)
	}
	return e.store.AppendOp(ctx, rec)
}

func (e *Engine) recordRetained() {
	for name, n := range e.reg.RetainedEntries() {
		e.metrics.SetRetained(name, n)
	}
}
