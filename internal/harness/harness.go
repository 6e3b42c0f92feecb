package harness

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/watchset/internal/config"
	"github.com/roach88/watchset/internal/dump"
	"github.com/roach88/watchset/internal/engine"
	"github.com/roach88/watchset/internal/registry"
	"github.com/roach88/watchset/internal/store"
	"github.com/roach88/watchset/internal/testutil"
)

// Harness holds the engine and journal of one scenario run.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// Run executes a scenario against a fresh engine backed by an in-memory
// journal.
//
// The returned error covers problems running the scenario at all (bad
// config, store failure). Failed expectations and assertions are reported in
// Result.Errors with Result.Pass set to false.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	cfg, err := loadConfig(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := testutil.DiscardLogger()
	eng, err := engine.New(ctx, cfg,
		engine.WithStore(st),
		engine.WithSessionGenerator(testutil.NewFixedSessionGenerator(scenario.SessionID())),
		engine.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	h := &Harness{store: st, engine: eng, logger: logger}

	result := NewResult()
	h.executeSteps(ctx, scenario.Steps, result)

	actx := &AssertionContext{Ctx: ctx, Store: st, Engine: eng}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	result.Snapshot = eng.Snapshot()
	result.Dump = dump.String(result.Snapshot)
	return result, nil
}

func loadConfig(s *Scenario) (registry.Config[string], error) {
	if s.Config != "" {
		return config.Load(s.Config)
	}
	l, err := config.NewLoader()
	if err != nil {
		return registry.Config[string]{}, err
	}
	return l.CompileData(s.Registry)
}

// executeSteps applies each step in order. A failing step is traced and
// checked against its expectation, then the run continues.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) {
	for i, step := range steps {
		res, err := h.engine.Apply(ctx, step.Op)

		event := TraceEvent{
			Step:    i,
			Op:      string(step.Kind),
			List:    step.List,
			SN:      h.engine.Registry().Current(),
			Seq:     res.Seq,
			Members: res.Members,
		}
		if err != nil {
			event.Error = engine.CodeOf(err)
			if event.Error == "" {
				event.Error = err.Error()
			}
		}
		result.Trace = append(result.Trace, event)

		if msg := checkExpect(i, step, event, err); msg != "" {
			result.AddError(msg)
		}

		h.logger.Debug("step executed", "step", i, "op", step.Kind, "error", event.Error)
	}
}

func checkExpect(i int, step Step, event TraceEvent, err error) string {
	want := step.Expect
	switch {
	case want != nil && want.Error != "":
		if err == nil {
			return fmt.Sprintf("steps[%d] %s: expected error %s, got success", i, step.Kind, want.Error)
		}
		if event.Error != want.Error {
			return fmt.Sprintf("steps[%d] %s: expected error %s, got %s", i, step.Kind, want.Error, event.Error)
		}
		return ""
	case err != nil:
		return fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Kind, err)
	case want != nil && want.Members != nil:
		if !slices.Equal(sortedCopy(want.Members), nonNil(event.Members)) {
			return fmt.Sprintf("steps[%d] %s %s: expected members %v, got %v",
				i, step.Kind, step.List, sortedCopy(want.Members), nonNil(event.Members))
		}
	}
	return ""
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return nonNil(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
