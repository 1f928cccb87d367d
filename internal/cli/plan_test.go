package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execPlan(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	cmd := NewPlanCommand(&RootOptions{Format: format})
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	cmd.SetContext(context.Background())
	return stdout, cmd.Execute()
}

func TestPlan_ShowsStatusAndDiffWithoutWriting(t *testing.T) {
	patchset := writePatchset(t, `patches:
  - id: edit-1
    before: "foo"
    after: "qux"
`)
	target := writeArtifact(t, "foo\nkeep\n")

	stdout, err := execPlan(t, "text", patchset, target)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Edit edit-1 applied successfully")
	assert.Contains(t, stdout.String(), "- foo")
	assert.Contains(t, stdout.String(), "+ qux")
	assert.NotContains(t, stdout.String(), "Done!", "plan is not a run; no completion marker")

	data, readErr := os.ReadFile(target)
	require.NoError(t, readErr)
	assert.Equal(t, "foo\nkeep\n", string(data), "plan must never write")
}

func TestPlan_NoChanges(t *testing.T) {
	patchset := writePatchset(t, `patches:
  - id: edit-1
    before: "absent"
    after: "whatever"
`)
	target := writeArtifact(t, "content\n")

	stdout, err := execPlan(t, "text", patchset, target)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "Edit edit-1: Could not find the old code pattern")
	assert.Contains(t, stdout.String(), "No changes.")
}

func TestPlan_JSONOutput(t *testing.T) {
	patchset := writePatchset(t, `patches:
  - id: edit-1
    before: "foo"
    after: "bar"
`)
	target := writeArtifact(t, "foo\n")

	stdout, err := execPlan(t, "json", patchset, target)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, marshalErr := json.Marshal(resp.Data)
	require.NoError(t, marshalErr)
	var result PlanResult
	require.NoError(t, json.Unmarshal(payload, &result))

	assert.True(t, result.Changed)
	assert.Equal(t, 1, result.Applied)
	assert.NotEmpty(t, result.Diff)
}
