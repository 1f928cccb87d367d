package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool     `json:"valid"`
	Patches int      `json:"patches"`
	Errors  []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <patchset.yaml>",
		Short: "Schema-check a patchset file without touching any artifact",
		Long: `Validate a patchset file against the stitch schema.

Checks YAML well-formedness, the #PatchSet schema (required fields,
non-empty ids and before snippets), and the set's structural
invariants. Nothing is read or written besides the patchset file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, patchsetPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	set, errs := LoadPatchSet(patchsetPath)
	if len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, e.Error())
		}

		if handled, jerr := formatter.SuccessJSON(ValidationResult{
			Valid:  false,
			Errors: messages,
		}); handled {
			if jerr != nil {
				return WrapExitError(ExitCommandError, "cannot encode output", jerr)
			}
		} else {
			fmt.Fprintf(formatter.Writer, "Invalid: %s\n", patchsetPath)
			for _, m := range messages {
				fmt.Fprintf(formatter.Writer, "  - %s\n", m)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("patchset %s failed validation", patchsetPath))
	}

	if handled, err := formatter.SuccessJSON(ValidationResult{
		Valid:   true,
		Patches: len(set),
	}); handled {
		if err != nil {
			return WrapExitError(ExitCommandError, "cannot encode output", err)
		}
		return nil
	}

	fmt.Fprintf(formatter.Writer, "Valid: %s (%d patches)\n", patchsetPath, len(set))
	return nil
}
