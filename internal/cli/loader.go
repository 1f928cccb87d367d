package cli

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/seamkit/stitch/internal/patch"
)

//go:embed schema.cue
var schemaCUE string

// LoadError represents an error that occurred during patchset loading.
type LoadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// patchsetFile is the on-disk YAML shape.
type patchsetFile struct {
	Patches []patch.Patch `yaml:"patches"`
}

// LoadPatchSet reads, schema-checks, and decodes a patchset YAML file.
//
// Validation happens in three layers, all of which must pass:
//  1. the file parses as YAML
//  2. the document unifies with the embedded #PatchSet CUE schema
//     (shape, required fields, non-empty id/before)
//  3. patch.Set.Validate accepts the decoded entries
//
// All schema violations are collected and returned together rather than
// stopping at the first, so a broken patchset file is fixable in one
// pass.
func LoadPatchSet(path string) (patch.Set, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&LoadError{
			Code:    ErrCodePatchsetNotFound,
			Message: fmt.Sprintf("cannot read patchset file: %v", err),
		}}
	}

	// Layer 1: YAML parse, once into a generic document for the schema
	// check and once into the typed shape.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, []error{&LoadError{
			Code:    ErrCodePatchsetInvalid,
			Message: fmt.Sprintf("invalid YAML: %v", err),
		}}
	}
	if doc == nil {
		return nil, []error{&LoadError{
			Code:    ErrCodePatchsetInvalid,
			Message: "patchset file is empty",
		}}
	}

	// Layer 2: CUE schema unification.
	if errs := validateAgainstSchema(doc); len(errs) > 0 {
		return nil, errs
	}

	var file patchsetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, []error{&LoadError{
			Code:    ErrCodePatchsetInvalid,
			Message: fmt.Sprintf("invalid patchset shape: %v", err),
		}}
	}

	set := patch.Set(file.Patches)

	// Layer 3: structural invariants on the decoded set. The CUE schema
	// already enforces these for well-formed documents; this catches
	// sets constructed through other paths too.
	if verrs := set.Validate(); len(verrs) > 0 {
		errs := make([]error, 0, len(verrs))
		for _, e := range verrs {
			errs = append(errs, &LoadError{
				Code:    ErrCodePatchsetInvalid,
				Message: e.Error(),
			})
		}
		return nil, errs
	}

	return set, nil
}

// validateAgainstSchema unifies the decoded YAML document with the
// embedded #PatchSet definition and collects every violation.
func validateAgainstSchema(doc any) []error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		// The schema is embedded; failing to compile it is a build bug.
		return []error{&LoadError{
			Code:    ErrCodePatchsetInvalid,
			Message: fmt.Sprintf("internal schema error: %v", err),
		}}
	}

	def := schema.LookupPath(cue.ParsePath("#PatchSet"))
	if err := def.Err(); err != nil {
		return []error{&LoadError{
			Code:    ErrCodePatchsetInvalid,
			Message: fmt.Sprintf("internal schema error: %v", err),
		}}
	}

	unified := def.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		var errs []error
		for _, e := range cueerrors.Errors(err) {
			msg := e.Error()
			if pos := e.Position(); pos.IsValid() {
				msg = fmt.Sprintf("%s (%s)", msg, pos)
			}
			errs = append(errs, &LoadError{
				Code:    ErrCodePatchsetInvalid,
				Message: msg,
			})
		}
		return errs
	}
	return nil
}
