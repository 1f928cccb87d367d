package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seamkit/stitch/internal/engine"
	"github.com/seamkit/stitch/internal/patch"
)

// Domain prefix for run fingerprints. Version suffix enables future
// algorithm migration without colliding with old hashes.
const fingerprintDomain = "stitch/run/v1"

// Run is one journaled apply run.
type Run struct {
	ID           string          `json:"id"`
	Artifact     string          `json:"artifact"`
	StartedAt    time.Time       `json:"started_at"`
	PatchCount   int             `json:"patch_count"`
	AppliedCount int             `json:"applied_count"`
	Wrote        bool            `json:"wrote"`
	Fingerprint  string          `json:"fingerprint"`
	Results      []engine.Result `json:"results,omitempty"` // populated by GetRun
}

// NewRunID returns a time-sortable UUIDv7 run identifier.
// Panics if UUID generation fails (should never happen in practice).
func NewRunID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fingerprint computes the canonical hash of a run outcome. Two runs
// over the same artifact with the same per-patch results and the same
// final content fingerprint identically, which is what makes journal
// entries comparable across machines.
func Fingerprint(artifactPath string, out engine.Outcome) (string, error) {
	results := make([]any, len(out.Results))
	for i, r := range out.Results {
		results[i] = map[string]any{
			"patch_id":    r.PatchID,
			"status":      string(r.Status),
			"occurrences": r.Occurrences,
		}
	}
	return patch.HashCanonical(fingerprintDomain, map[string]any{
		"artifact": artifactPath,
		"content":  out.Content,
		"results":  results,
	})
}

// WriteRun inserts a run and its per-patch results in one transaction.
// Run IDs are content-free (UUIDv7), so a duplicate ID is a caller bug
// and surfaces as a constraint error rather than being swallowed.
func (j *Journal) WriteRun(ctx context.Context, run Run, results []engine.Result) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, artifact, started_at, patch_count, applied_count, wrote, fingerprint)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Artifact,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.PatchCount,
		run.AppliedCount,
		boolToInt(run.Wrote),
		run.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}

	for seq, r := range results {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_results (run_id, seq, patch_id, status, occurrences)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, seq, r.PatchID, string(r.Status), r.Occurrences)
		if err != nil {
			return fmt.Errorf("write run result %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
