package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/watchset/internal/dump"
	"github.com/roach88/watchset/internal/engine"
	"github.com/roach88/watchset/internal/store"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Database string
	Session  string
}

func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the state of a journaled session",
		Long: `Rebuild a session from the journal and print every list with its
retained steps.

Examples:
  watchset dump --db ./watch.db --session 0190c3a2-...
  watchset dump --db ./watch.db --session 0190c3a2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to dump (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := openExisting(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	eng, err := engine.Replay(ctx, st, opts.Session,
		engine.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	if errors.Is(err, sql.ErrNoRows) {
		return NewExitError(ExitCommandError, fmt.Sprintf("session not found: %s", opts.Session))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to replay session", err)
	}

	if opts.Format == "json" {
		return formatter.JSON(dump.FromSnapshot(opts.Session, eng.Snapshot()), nil)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "session %s\n", opts.Session)
	return dump.Write(cmd.OutOrStdout(), eng.Snapshot())
}

// openExisting opens a database that must already exist; store.Open would
// silently create an empty one.
func openExisting(path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, "database not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}
