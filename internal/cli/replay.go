package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/watchset/internal/engine"
	"github.com/roach88/watchset/internal/ir"
	"github.com/roach88/watchset/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string         `json:"session"`
	Ops           int64          `json:"ops"`
	CurrentSN     int64          `json:"current_sn"`
	Kinds         map[string]int `json:"kinds"`
	Deterministic bool           `json:"deterministic"`
}

type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay journaled sessions and verify determinism",
		Long: `Rebuild every journaled session twice from its recorded ops and check
that both rebuilds reach the same registry state and that every op lands on
the sn it was journaled at.

Exit codes:
  0 - All sessions are deterministic
  1 - A session diverged
  2 - Command error (database not found, etc.)

Examples:
  watchset replay --db ./watch.db
  watchset replay --db ./watch.db --session 0190c3a2-...
  watchset replay --db ./watch.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay a specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}
	if len(sessions) == 0 {
		if opts.Format == "json" {
			return formatter.JSON(result, nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in database.")
		return nil
	}

	for _, id := range sessions {
		sr, err := replaySession(ctx, st, id, engine.WithLogger(logger))
		if err != nil && !engine.IsReplayDiverged(err) {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", id), err)
		}
		if err != nil {
			logger.Warn("replay diverged", "session", id, "error", err)
		}
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		var cliErr *CLIError
		if !result.AllDeterministic {
			cliErr = &CLIError{Code: string(engine.ErrCodeReplayDiverged), Message: "determinism verification failed"}
		}
		if err := formatter.JSON(result, cliErr); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// replaySession verifies one session. A diverged replay is returned with
// Deterministic false together with the divergence error.
func replaySession(ctx context.Context, st *store.Store, id string, opts ...engine.Option) (ReplaySessionResult, error) {
	sr := ReplaySessionResult{Session: id, Kinds: map[string]int{}}

	counts, err := st.CountOpsByKind(ctx, id)
	if err != nil {
		return sr, err
	}
	for kind, n := range counts {
		sr.Kinds[string(kind)] = n
		sr.Ops += int64(n)
	}

	res, ok, err := engine.VerifyReplay(ctx, st, id, opts...)
	if err != nil {
		return sr, err
	}
	sr.CurrentSN = res.Snapshot.Current
	sr.Deterministic = ok
	return sr, nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)
	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, s.Session)
		fmt.Fprintf(w, "  Ops: %d, current sn: %d\n", s.Ops, s.CurrentSN)
		for _, kind := range ir.Kinds {
			if n := s.Kinds[string(kind)]; n > 0 {
				fmt.Fprintf(w, "  %-12s %d\n", kind, n)
			}
		}
		if !s.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
