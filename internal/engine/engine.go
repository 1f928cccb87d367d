package engine

import (
	"strings"

	"github.com/seamkit/stitch/internal/patch"
)

// Status is the per-patch outcome. It is a closed enum: a patch either
// landed or its Before snippet was not present. There is no error case -
// a miss is data, not a failure of the engine.
type Status string

const (
	// StatusApplied means the Before snippet was found and every
	// occurrence was replaced.
	StatusApplied Status = "applied"

	// StatusNotFound means the Before snippet was absent from the
	// content at the time this patch ran. Soft miss; the run continued.
	StatusNotFound Status = "not_found"
)

// Result records the outcome of one patch. Results are produced exactly
// once per patch, in set order.
type Result struct {
	PatchID string `json:"patch_id"`
	Status  Status `json:"status"`

	// Occurrences is how many non-overlapping copies of Before were
	// replaced. Zero exactly when Status is StatusNotFound.
	Occurrences int `json:"occurrences"`
}

// Applied reports whether this patch landed.
func (r Result) Applied() bool { return r.Status == StatusApplied }

// Outcome is the full result of one engine run: the final content plus
// one Result per input patch, in order.
type Outcome struct {
	Content string   `json:"content"`
	Results []Result `json:"results"`
}

// Apply runs the patch set against content and returns the outcome.
//
// INVARIANTS:
//   - len(out.Results) == len(set), in set order, unconditionally
//   - patches see the content produced by the patches before them
//   - a miss never stops the run and never alters the content
//   - replacement is all non-overlapping occurrences (strings.ReplaceAll)
//
// Apply never fails: an empty set yields the content unchanged with no
// results, and a patch with an empty Before (which validation rejects
// upstream) is treated as a miss rather than matching everywhere.
func Apply(content string, set patch.Set) Outcome {
	out := Outcome{
		Content: content,
		Results: make([]Result, 0, len(set)),
	}

	for _, p := range set {
		if p.Before == "" || !strings.Contains(out.Content, p.Before) {
			out.Results = append(out.Results, Result{
				PatchID: p.ID,
				Status:  StatusNotFound,
			})
			continue
		}

		n := strings.Count(out.Content, p.Before)
		out.Content = strings.ReplaceAll(out.Content, p.Before, p.After)
		out.Results = append(out.Results, Result{
			PatchID:     p.ID,
			Status:      StatusApplied,
			Occurrences: n,
		})
	}

	return out
}

// Complete reports whether every patch in the run applied.
func (o Outcome) Complete() bool {
	for _, r := range o.Results {
		if !r.Applied() {
			return false
		}
	}
	return true
}

// Unapplied returns the IDs of patches that missed, in set order.
// Duplicate IDs appear once per missing entry.
func (o Outcome) Unapplied() []string {
	var ids []string
	for _, r := range o.Results {
		if !r.Applied() {
			ids = append(ids, r.PatchID)
		}
	}
	return ids
}

// AppliedCount returns how many patches landed.
func (o Outcome) AppliedCount() int {
	n := 0
	for _, r := range o.Results {
		if r.Applied() {
			n++
		}
	}
	return n
}
