package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/seamkit/stitch/internal/engine"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// ListRuns returns journaled runs newest-first. When artifactPath is
// non-empty, only runs against that artifact are returned. Results are
// not populated; use GetRun for the per-patch breakdown.
func (j *Journal) ListRuns(ctx context.Context, artifactPath string) ([]Run, error) {
	query := `
		SELECT id, artifact, started_at, patch_count, applied_count, wrote, fingerprint
		FROM runs
	`
	var args []any
	if artifactPath != "" {
		query += " WHERE artifact = ?"
		args = append(args, artifactPath)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run with its per-patch results in set order.
func (j *Journal) GetRun(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, artifact, started_at, patch_count, applied_count, wrote, fingerprint
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT patch_id, status, occurrences
		FROM run_results WHERE run_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r engine.Result
		var status string
		if err := rows.Scan(&r.PatchID, &status, &r.Occurrences); err != nil {
			return Run{}, fmt.Errorf("get run %s: %w", id, err)
		}
		r.Status = engine.Status(status)
		run.Results = append(run.Results, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (Run, error) {
	var run Run
	var startedAt string
	var wrote int
	if err := s.Scan(
		&run.ID,
		&run.Artifact,
		&startedAt,
		&run.PatchCount,
		&run.AppliedCount,
		&wrote,
		&run.Fingerprint,
	); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	run.StartedAt = t
	run.Wrote = wrote != 0
	return run, nil
}
