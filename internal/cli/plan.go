package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seamkit/stitch/internal/artifact"
	"github.com/seamkit/stitch/internal/engine"
	"github.com/seamkit/stitch/internal/report"
)

// PlanResult is the JSON payload for a plan run.
type PlanResult struct {
	Artifact  string          `json:"artifact"`
	Results   []engine.Result `json:"results"`
	Applied   int             `json:"applied"`
	Unapplied []string        `json:"unapplied,omitempty"`
	Changed   bool            `json:"changed"`
	Diff      string          `json:"diff,omitempty"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <patchset.yaml> <artifact>",
		Short: "Show what apply would do without writing anything",
		Long: `Run the engine against the artifact and show the per-patch outcome
and a line diff of the resulting change. The artifact is never written.

Example:
  stitch plan fixes.yaml src/app/mod.rs`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runPlan(opts *RootOptions, patchsetPath, artifactPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	set, loadErr := loadPatchSetOrReport(formatter, patchsetPath)
	if loadErr != nil {
		return loadErr
	}

	content, err := artifact.Read(artifactPath)
	if err != nil {
		formatter.Error(ErrCodeArtifactRead, err.Error(), nil)
		return WrapExitError(ExitCommandError, "cannot read artifact", err)
	}

	out := engine.Apply(content, set)
	diff := report.Diff(content, out.Content)

	result := PlanResult{
		Artifact:  artifactPath,
		Results:   out.Results,
		Applied:   out.AppliedCount(),
		Unapplied: out.Unapplied(),
		Changed:   out.Content != content,
		Diff:      diff,
	}

	if handled, err := formatter.SuccessJSON(result); handled {
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot encode output", err)
		}
		return nil
	}

	for _, r := range out.Results {
		fmt.Fprintln(formatter.Writer, report.Line(r))
	}
	if diff == "" {
		fmt.Fprintln(formatter.Writer, "No changes.")
	} else {
		fmt.Fprint(formatter.Writer, diff)
	}
	return nil
}
