package report

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamkit/stitch/internal/engine"
)

func TestLine_Applied(t *testing.T) {
	r := engine.Result{PatchID: "edit-1", Status: engine.StatusApplied, Occurrences: 3}
	assert.Equal(t, "Edit edit-1 applied successfully", Line(r))
}

func TestLine_NotFound(t *testing.T) {
	r := engine.Result{PatchID: "edit-2", Status: engine.StatusNotFound}
	assert.Equal(t, "Edit edit-2: Could not find the old code pattern", Line(r))
}

func TestReport_EmitsLinesInOrderThenDone(t *testing.T) {
	var buf bytes.Buffer
	rep := New(&buf)

	err := rep.Report([]engine.Result{
		{PatchID: "edit-1", Status: engine.StatusApplied, Occurrences: 1},
		{PatchID: "edit-2", Status: engine.StatusNotFound},
		{PatchID: "edit-3", Status: engine.StatusApplied, Occurrences: 2},
	})
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "mixed_results", buf.Bytes())
}

func TestReport_EmptyResultsStillEmitsDone(t *testing.T) {
	var buf bytes.Buffer
	rep := New(&buf)

	require.NoError(t, rep.Report(nil))
	assert.Equal(t, "Done!\n", buf.String())
}
