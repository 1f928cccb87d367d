package patch

import "fmt"

// Patch is a single named literal substitution: every occurrence of
// Before in the target text becomes After.
//
// Patches are immutable values. Before must be non-empty (an empty
// needle matches everywhere and means nothing); After may be empty
// (deletion) and may equal Before (a no-op, tolerated and reported as
// applied when found).
type Patch struct {
	ID     string `json:"id" yaml:"id"`
	Before string `json:"before" yaml:"before"`
	After  string `json:"after" yaml:"after"`
}

// Set is an ordered sequence of patches. Order is semantic: each patch
// observes the content produced by the patches before it, so a later
// Before may match text a previous After introduced.
//
// Duplicate IDs are permitted - entries are independent and each
// produces its own result.
type Set []Patch

// ValidationError describes a structural problem with a patch entry.
type ValidationError struct {
	Index   int    `json:"index"` // position in the set, 0-based
	PatchID string `json:"patch_id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.PatchID != "" {
		return fmt.Sprintf("patch %q (entry %d): %s: %s", e.PatchID, e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("patch entry %d: %s: %s", e.Index, e.Field, e.Message)
}

// Validate checks the structural invariants of the set and returns all
// violations. A nil return means the set is applyable.
//
// Deliberately NOT rejected here:
//   - Before == After (no-op patch; the engine tolerates it)
//   - duplicate IDs (entries are independent)
func (s Set) Validate() []error {
	var errs []error
	for i, p := range s {
		if p.ID == "" {
			errs = append(errs, &ValidationError{
				Index:   i,
				Field:   "id",
				Message: "must be non-empty",
			})
		}
		if p.Before == "" {
			errs = append(errs, &ValidationError{
				Index:   i,
				PatchID: p.ID,
				Field:   "before",
				Message: "must be non-empty",
			})
		}
	}
	return errs
}

// IDs returns the patch identifiers in set order. Duplicates are
// preserved.
func (s Set) IDs() []string {
	ids := make([]string, len(s))
	for i, p := range s {
		ids[i] = p.ID
	}
	return ids
}
