// Package report turns engine results into the human-readable status
// surface: one line per patch plus a completion marker. It consumes
// results, never content - nothing here can affect what gets written
// back to the artifact.
package report

import (
	"fmt"
	"io"

	"github.com/seamkit/stitch/internal/engine"
)

// Reporter writes per-patch status lines to W in result order, then a
// single completion marker. The line format is part of the tool's
// contract; scripts grep for it.
type Reporter struct {
	W io.Writer
}

// New creates a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{W: w}
}

// Line renders the status line for a single result.
func Line(r engine.Result) string {
	if r.Applied() {
		return fmt.Sprintf("Edit %s applied successfully", r.PatchID)
	}
	return fmt.Sprintf("Edit %s: Could not find the old code pattern", r.PatchID)
}

// Report emits one status line per result, in order, followed by the
// completion marker. It is called exactly once per run, after the
// engine returns and regardless of how many patches missed.
func (rep *Reporter) Report(results []engine.Result) error {
	for _, r := range results {
		if _, err := fmt.Fprintln(rep.W, Line(r)); err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}
	if _, err := fmt.Fprintln(rep.W, "Done!"); err != nil {
		return fmt.Errorf("report: %w", err)
	}
	return nil
}
