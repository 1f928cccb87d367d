package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/seamkit/stitch/internal/artifact"
	"github.com/seamkit/stitch/internal/engine"
	"github.com/seamkit/stitch/internal/journal"
	"github.com/seamkit/stitch/internal/patch"
	"github.com/seamkit/stitch/internal/report"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	Journal    string
	RequireAll bool
	DryRun     bool
	ShowDiff   bool
}

// ApplyResult is the JSON payload for a completed apply run.
type ApplyResult struct {
	Artifact    string          `json:"artifact"`
	Results     []engine.Result `json:"results"`
	Applied     int             `json:"applied"`
	Unapplied   []string        `json:"unapplied,omitempty"`
	Wrote       bool            `json:"wrote"`
	DryRun      bool            `json:"dry_run,omitempty"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	RunID       string          `json:"run_id,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply <patchset.yaml> <artifact>",
		Short: "Apply a patchset to a file and write the result back",
		Long: `Apply an ordered patchset to a file.

The file is read once, every patch is applied in order against the
current content (all occurrences, exact substring match), and the final
content is written back once - by default even when some patches
missed, since a soft miss is not a failure of the run.

Example:
  stitch apply fixes.yaml src/app/mod.rs
  stitch apply fixes.yaml src/app/mod.rs --require-all --diff
  stitch apply fixes.yaml src/app/mod.rs --journal .stitch.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite run journal (optional)")
	cmd.Flags().BoolVar(&opts.RequireAll, "require-all", false, "abort the write and exit 1 if any patch misses")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "run the engine but never write the artifact")
	cmd.Flags().BoolVar(&opts.ShowDiff, "diff", false, "print a line diff of the change")

	return cmd
}

func runApply(opts *ApplyOptions, patchsetPath, artifactPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	startedAt := time.Now()

	set, loadErrs := loadPatchSetOrReport(formatter, patchsetPath)
	if loadErrs != nil {
		return loadErrs
	}
	slog.Debug("patchset loaded", "path", patchsetPath, "patches", len(set))

	content, err := artifact.Read(artifactPath)
	if err != nil {
		formatter.Error(ErrCodeArtifactRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read artifact", err)
	}
	slog.Debug("artifact read", "path", artifactPath, "bytes", len(content))

	out := engine.Apply(content, set)
	for _, r := range out.Results {
		slog.Debug("patch processed",
			"patch", r.PatchID,
			"status", string(r.Status),
			"occurrences", r.Occurrences,
		)
	}

	// Write policy: unconditional by default (the soft-miss contract),
	// withheld on --dry-run, withheld on --require-all when incomplete.
	wrote := false
	if !opts.DryRun && (out.Complete() || !opts.RequireAll) {
		if err := artifact.Write(artifactPath, out.Content); err != nil {
			formatter.Error(ErrCodeArtifactWrite, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot write artifact", err)
		}
		wrote = true
		slog.Debug("artifact written", "path", artifactPath, "bytes", len(out.Content))
	}

	result := ApplyResult{
		Artifact:  artifactPath,
		Results:   out.Results,
		Applied:   out.AppliedCount(),
		Unapplied: out.Unapplied(),
		Wrote:     wrote,
		DryRun:    opts.DryRun,
	}

	if opts.Journal != "" {
		runID, fingerprint, err := journalRun(cmd, opts.Journal, artifactPath, startedAt, out, wrote)
		if err != nil {
			formatter.Error(ErrCodeJournal, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cannot journal run", err)
		}
		result.RunID = runID
		result.Fingerprint = fingerprint
	}

	if handled, err := formatter.SuccessJSON(result); handled {
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot encode output", err)
		}
	} else {
		if err := report.New(formatter.Writer).Report(out.Results); err != nil {
			return WrapExitError(ExitCommandError, "cannot write report", err)
		}
		if opts.ShowDiff {
			if d := report.Diff(content, out.Content); d != "" {
				fmt.Fprint(formatter.Writer, d)
			}
		}
	}

	if opts.RequireAll && !out.Complete() {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%d patch(es) not applied: %v", len(out.Unapplied()), out.Unapplied()))
	}
	return nil
}

// loadPatchSetOrReport loads the patchset and, on failure, reports the
// errors through the formatter and returns the ExitError to propagate.
func loadPatchSetOrReport(formatter *OutputFormatter, path string) (patch.Set, error) {
	loaded, errs := LoadPatchSet(path)
	if len(errs) == 0 {
		return loaded, nil
	}

	messages := make([]string, 0, len(errs))
	code := ErrCodePatchsetInvalid
	exitCode := ExitFailure
	for _, e := range errs {
		var loadErr *LoadError
		if errors.As(e, &loadErr) && loadErr.Code == ErrCodePatchsetNotFound {
			code = ErrCodePatchsetNotFound
			exitCode = ExitCommandError
		}
		messages = append(messages, e.Error())
	}
	formatter.Error(code, fmt.Sprintf("patchset %s is not usable", path), messages)
	return nil, NewExitError(exitCode, fmt.Sprintf("invalid patchset %s", path))
}

// journalRun records the run in the journal and returns its ID and
// fingerprint.
func journalRun(cmd *cobra.Command, journalPath, artifactPath string, startedAt time.Time, out engine.Outcome, wrote bool) (string, string, error) {
	j, err := journal.Open(journalPath)
	if err != nil {
		return "", "", err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	fingerprint, err := journal.Fingerprint(artifactPath, out)
	if err != nil {
		return "", "", err
	}

	run := journal.Run{
		ID:           journal.NewRunID(),
		Artifact:     artifactPath,
		StartedAt:    startedAt,
		PatchCount:   len(out.Results),
		AppliedCount: out.AppliedCount(),
		Wrote:        wrote,
		Fingerprint:  fingerprint,
	}
	if err := j.WriteRun(cmd.Context(), run, out.Results); err != nil {
		return "", "", err
	}
	slog.Debug("run journaled", "run_id", run.ID, "journal", journalPath)
	return run.ID, fingerprint, nil
}
