package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/seamkit/stitch/internal/journal"
	"github.com/seamkit/stitch/internal/report"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Journal  string
	Artifact string
	RunID    string
}

// HistoryResult is the JSON payload for the history command.
type HistoryResult struct {
	Runs []journal.Run `json:"runs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled apply runs",
		Long: `List apply runs recorded in a journal database, newest first.

Examples:
  stitch history --journal .stitch.db
  stitch history --journal .stitch.db --artifact src/app/mod.rs
  stitch history --journal .stitch.db --run 0191b2c4-...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite run journal (required)")
	cmd.Flags().StringVar(&opts.Artifact, "artifact", "", "only show runs against this file")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show one run with its per-patch results")
	_ = cmd.MarkFlagRequired("journal")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	j, err := journal.Open(opts.Journal)
	if err != nil {
		formatter.Error(ErrCodeJournal, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	var runs []journal.Run
	if opts.RunID != "" {
		run, err := j.GetRun(cmd.Context(), opts.RunID)
		if err != nil {
			formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot load run", err)
		}
		runs = []journal.Run{run}
	} else {
		runs, err = j.ListRuns(cmd.Context(), opts.Artifact)
		if err != nil {
			formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot list runs", err)
		}
	}

	if handled, err := formatter.SuccessJSON(HistoryResult{Runs: runs}); handled {
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot encode output", err)
		}
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "%s  %s  %s  %d/%d applied  wrote=%t\n",
			run.StartedAt.UTC().Format(time.RFC3339),
			run.ID,
			run.Artifact,
			run.AppliedCount,
			run.PatchCount,
			run.Wrote,
		)
		for _, r := range run.Results {
			fmt.Fprintf(formatter.Writer, "    %s\n", report.Line(r))
		}
	}
	return nil
}
