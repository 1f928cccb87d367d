package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seamkit/stitch/internal/patch"
)

func TestApply_ReplacesAllOccurrences(t *testing.T) {
	set := patch.Set{
		{ID: "edit-1", Before: "A", After: "X"},
	}

	out := Apply("A B A", set)

	assert.Equal(t, "X B X", out.Content, "every occurrence should be replaced, not just the first")
	require.Len(t, out.Results, 1)
	assert.Equal(t, StatusApplied, out.Results[0].Status)
	assert.Equal(t, 2, out.Results[0].Occurrences)
}

func TestApply_SequentialDependency(t *testing.T) {
	set := patch.Set{
		{ID: "edit-1", Before: "foo", After: "bar"},
		{ID: "edit-2", Before: "bar", After: "baz"},
	}

	out := Apply("foo", set)

	assert.Equal(t, "baz", out.Content, "second patch should see the first patch's output")
	require.Len(t, out.Results, 2)
	assert.Equal(t, StatusApplied, out.Results[0].Status)
	assert.Equal(t, StatusApplied, out.Results[1].Status)
	assert.True(t, out.Complete())
}

func TestApply_SoftMissDoesNotStopRun(t *testing.T) {
	set := patch.Set{
		{ID: "edit-1", Before: "xyz", After: "abc"},
		{ID: "edit-2", Before: "hello", After: "world"},
	}

	out := Apply("hello", set)

	assert.Equal(t, "world", out.Content, "a miss must not block later patches")
	require.Len(t, out.Results, 2)
	assert.Equal(t, StatusNotFound, out.Results[0].Status)
	assert.Equal(t, 0, out.Results[0].Occurrences)
	assert.Equal(t, StatusApplied, out.Results[1].Status)
	assert.Equal(t, []string{"edit-1"}, out.Unapplied())
	assert.False(t, out.Complete())
}

func TestApply_Idempotent(t *testing.T) {
	set := patch.Set{
		{ID: "edit-1", Before: "position = object.position", After: "position = data.position"},
		{ID: "edit-2", Before: "scale = object.scale", After: "scale = data.scale"},
	}
	content := "position = object.position\nscale = object.scale\n"

	first := Apply(content, set)
	require.True(t, first.Complete())

	second := Apply(first.Content, set)

	assert.Equal(t, first.Content, second.Content, "re-running on own output must be a no-op")
	for _, r := range second.Results {
		assert.Equal(t, StatusNotFound, r.Status, "patch %s should report not found on second run", r.PatchID)
	}
}

func TestApply_AllMissesPreserveContentExactly(t *testing.T) {
	const content = "line one\r\nline two\n\ttrailing\n"
	set := patch.Set{
		{ID: "edit-1", Before: "absent", After: "whatever"},
		{ID: "edit-2", Before: "also absent", After: ""},
	}

	out := Apply(content, set)

	assert.Equal(t, content, out.Content, "all-miss run must return input byte-for-byte")
	assert.Equal(t, 0, out.AppliedCount())
}

func TestApply_OrderSensitivity(t *testing.T) {
	a := patch.Patch{ID: "a", Before: "foo", After: "bar"}
	b := patch.Patch{ID: "b", Before: "bar", After: "baz"}

	forward := Apply("foo", patch.Set{a, b})
	assert.Equal(t, "baz", forward.Content)
	assert.True(t, forward.Complete())

	// Reversed: b runs before a introduced "bar", so b misses.
	reversed := Apply("foo", patch.Set{b, a})
	assert.Equal(t, "bar", reversed.Content)
	require.Len(t, reversed.Results, 2)
	assert.Equal(t, StatusNotFound, reversed.Results[0].Status)
	assert.Equal(t, StatusApplied, reversed.Results[1].Status)
}

func TestApply_EmptySet(t *testing.T) {
	out := Apply("unchanged", patch.Set{})

	assert.Equal(t, "unchanged", out.Content)
	assert.Empty(t, out.Results)
	assert.True(t, out.Complete(), "vacuously complete")
}

func TestApply_NoOpPatchReportsAppliedWhenFound(t *testing.T) {
	// Before == After is meaningless but tolerated: it is reported as
	// applied when the snippet is present.
	set := patch.Set{
		{ID: "noop", Before: "same", After: "same"},
	}

	out := Apply("same old same", set)

	assert.Equal(t, "same old same", out.Content)
	require.Len(t, out.Results, 1)
	assert.Equal(t, StatusApplied, out.Results[0].Status)
	assert.Equal(t, 2, out.Results[0].Occurrences)
}

func TestApply_DeletionPatch(t *testing.T) {
	set := patch.Set{
		{ID: "strip", Before: " // FIXME", After: ""},
	}

	out := Apply("x := 1 // FIXME\ny := 2 // FIXME\n", set)

	assert.Equal(t, "x := 1\ny := 2\n", out.Content)
	assert.Equal(t, 2, out.Results[0].Occurrences)
}

func TestApply_DuplicateIDsAreIndependent(t *testing.T) {
	set := patch.Set{
		{ID: "dup", Before: "one", After: "two"},
		{ID: "dup", Before: "two", After: "three"},
	}

	out := Apply("one", set)

	assert.Equal(t, "three", out.Content)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "dup", out.Results[0].PatchID)
	assert.Equal(t, "dup", out.Results[1].PatchID)
}

func TestApply_EmptyBeforeTreatedAsMiss(t *testing.T) {
	// Validation rejects empty Before upstream; the engine still must
	// not let it match everywhere if handed one.
	set := patch.Set{
		{ID: "bad", Before: "", After: "X"},
	}

	out := Apply("abc", set)

	assert.Equal(t, "abc", out.Content)
	assert.Equal(t, StatusNotFound, out.Results[0].Status)
}
