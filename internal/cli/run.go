package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/watchset/internal/config"
	"github.com/roach88/watchset/internal/dump"
	"github.com/roach88/watchset/internal/engine"
	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/metrics"
	"github.com/roach88/watchset/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database   string
	Session    string
	KeepGoing  bool
	MetricsOut string

	// SessionGenerator overrides the session id generator (for testing).
	// Ignored when Session is set.
	SessionGenerator engine.SessionIDGenerator
}

// QueryResult is the answer to one get or get_until op.
type QueryResult struct {
	Index   int      `json:"index"`
	Op      string   `json:"op"`
	List    string   `json:"list"`
	Pos     int64    `json:"pos"`
	SN      int64    `json:"sn"`
	Members []string `json:"members"`
}

// Rejection is an op the registry refused.
type Rejection struct {
	Index   int    `json:"index"`
	Op      string `json:"op"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RunResult struct {
	Session  string        `json:"session"`
	Applied  int           `json:"applied"`
	Queries  []QueryResult `json:"queries"`
	Rejected []Rejection   `json:"rejected,omitempty"`
	State    dump.State    `json:"state"`
}

type opScript struct {
	Ops []ir.Op `yaml:"ops"`
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config> <ops.yaml>",
		Short: "Apply an op script in a new journal session",
		Long: `Build a registry from a CUE definition and apply a YAML op script to it.

Every applied mutation is journaled to the SQLite database under a new
session. Query results (get, get_until) are printed, followed by the final
state of every list.

The op script is a list of operations:

  ops:
    - op: advance
      sn: 1
    - op: add
      list: watch
      members: [AAPL]
    - op: get_until
      list: watch
      pos: -1

Exit codes:
  0 - All ops applied
  1 - An op was rejected (the run stops there unless --keep-going)
  2 - Command error (config, script or database problems)

Examples:
  watchset run --db ./watch.db ./watch.cue ./ops.yaml
  watchset run --db ./watch.db ./watch.cue ./ops.yaml --metrics-out ./watchset.prom`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (default: new UUIDv7)")
	cmd.Flags().BoolVar(&opts.KeepGoing, "keep-going", false, "continue after a rejected op")
	cmd.Flags().StringVar(&opts.MetricsOut, "metrics-out", "", "write Prometheus metrics in text format to this file")

	return cmd
}

func runOps(opts *RunOptions, configPath, scriptPath string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := config.Load(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	ops, err := loadOps(scriptPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load op script", err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if opts.Session != "" {
		last, err := st.LastSeq(ctx, opts.Session)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read session", err)
		}
		if last > 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("session %s already has %d journaled ops", opts.Session, last))
		}
	}

	promReg := prometheus.NewRegistry()
	engOpts := []engine.Option{
		engine.WithStore(st),
		engine.WithLogger(logger),
		engine.WithMetrics(metrics.New(promReg)),
	}
	switch {
	case opts.Session != "":
		engOpts = append(engOpts, engine.WithSessionID(opts.Session))
	case opts.SessionGenerator != nil:
		engOpts = append(engOpts, engine.WithSessionGenerator(opts.SessionGenerator))
	}

	eng, err := engine.New(ctx, cfg, engOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start engine", err)
	}
	logger.Info("session started", "session", eng.SessionID(), "ops", len(ops), "db", opts.Database)

	result := RunResult{Session: eng.SessionID(), Queries: []QueryResult{}}
	for i, op := range ops {
		res, err := eng.Apply(ctx, op)
		if err != nil {
			if engine.IsJournalError(err) {
				return WrapExitError(ExitCommandError, "failed to journal op", err)
			}
			logger.Warn("op rejected", "index", i, "op", op.Kind, "error", err)
			result.Rejected = append(result.Rejected, Rejection{
				Index:   i,
				Op:      string(op.Kind),
				Code:    errorCode(err),
				Message: err.Error(),
			})
			if !opts.KeepGoing {
				break
			}
			continue
		}
		result.Applied++
		if op.IsQuery() {
			result.Queries = append(result.Queries, QueryResult{
				Index:   i,
				Op:      string(op.Kind),
				List:    op.List,
				Pos:     op.Pos,
				SN:      res.SN,
				Members: res.Members,
			})
		}
	}
	result.State = dump.FromSnapshot(eng.SessionID(), eng.Snapshot())

	if opts.MetricsOut != "" {
		if err := writeMetrics(opts.MetricsOut, promReg); err != nil {
			return WrapExitError(ExitCommandError, "failed to write metrics", err)
		}
	}

	if err := outputRun(opts, cmd, result, eng); err != nil {
		return err
	}
	if n := len(result.Rejected); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d op(s) rejected", n))
	}
	return nil
}

func outputRun(opts *RunOptions, cmd *cobra.Command, result RunResult, eng *engine.Engine) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		var cliErr *CLIError
		if n := len(result.Rejected); n > 0 {
			cliErr = &CLIError{Code: result.Rejected[0].Code, Message: fmt.Sprintf("%d op(s) rejected", n)}
		}
		return formatter.JSON(result, cliErr)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "session %s: %d op(s) applied\n", result.Session, result.Applied)
	for _, q := range result.Queries {
		fmt.Fprintf(w, "%s %s@%d (sn %d) = %v\n", q.Op, q.List, q.Pos, q.SN, q.Members)
	}
	for _, r := range result.Rejected {
		fmt.Fprintf(w, "✗ op %d %s: %s\n", r.Index, r.Op, r.Message)
	}
	fmt.Fprintln(w)
	return dump.Write(w, eng.Snapshot())
}

// loadOps decodes an op script, rejecting unknown fields.
func loadOps(path string) ([]ir.Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var script opScript
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(script.Ops) == 0 {
		return nil, errors.New("ops list is required and must be non-empty")
	}
	return script.Ops, nil
}

// writeMetrics dumps every collector in reg in the Prometheus text format,
// suitable for a node_exporter textfile collector.
func writeMetrics(path string, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
