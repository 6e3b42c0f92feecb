package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/watchset/internal/config"
	"github.com/roach88/watchset/internal/registry"
)

// ValidationResult describes a valid registry definition.
type ValidationResult struct {
	Valid         bool             `json:"valid"`
	Lists         []string         `json:"lists"`
	Baseline      string           `json:"baseline"`
	Members       int              `json:"members"`
	BaseSN        int64            `json:"base_sn"`
	DefaultWindow int64            `json:"default_window,omitempty"`
	Windows       map[string]int64 `json:"windows,omitempty"`
}

func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a registry definition",
		Long: `Validate a CUE registry definition (a file, or a directory of .cue files).

Checks the #Registry schema and the rules the schema cannot express:
unique list names, unique members and windows that name configured lists.

Exit codes:
  0 - Definition is valid
  1 - Definition is invalid
  2 - Config not found

Examples:
  watchset validate ./watch.cue
  watchset validate ./registry/ --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	formatter.VerboseLog("Loading %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		if err := formatter.Error(errorCode(err), err.Error(), errorDetails(err)); err != nil {
			return err
		}
		var ce *config.Error
		if errors.As(err, &ce) && ce.Code == config.ErrCodeNotFound {
			return WrapExitError(ExitCommandError, "config not found", err)
		}
		return WrapExitError(ExitFailure, "invalid config", err)
	}

	result := validationResult(cfg)
	if opts.Format == "json" {
		return formatter.JSON(result, nil)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ %s is valid\n", path)
	fmt.Fprintf(w, "  lists    : %s (baseline %s)\n", strings.Join(result.Lists, ", "), result.Baseline)
	fmt.Fprintf(w, "  members  : %d\n", result.Members)
	fmt.Fprintf(w, "  base sn  : %d\n", result.BaseSN)
	for _, name := range result.Lists {
		if wnd, ok := result.Windows[name]; ok {
			fmt.Fprintf(w, "  window   : %s=%d\n", name, wnd)
		}
	}
	return nil
}

func validationResult(cfg registry.Config[string]) ValidationResult {
	return ValidationResult{
		Valid:         true,
		Lists:         cfg.Lists,
		Baseline:      cfg.Lists[0],
		Members:       len(cfg.Universe),
		BaseSN:        cfg.BaseSN,
		DefaultWindow: cfg.DefaultWindow,
		Windows:       cfg.Windows,
	}
}
