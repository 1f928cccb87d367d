package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "cannot write artifact", cause)

	assert.Equal(t, "cannot write artifact: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode_PlainErrorDefaultsToFailure(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
}

func TestGetExitCode_WrappedExitError(t *testing.T) {
	inner := NewExitError(ExitCommandError, "inner")
	wrapped := fmt.Errorf("outer: %w", inner)
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}

func TestSuccessJSON_TextModeDoesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	handled, err := f.SuccessJSON(map[string]any{"x": 1})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, buf.String())
}

func TestSuccessJSON_JSONMode(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	handled, err := f.SuccessJSON(map[string]any{"patches": 2})
	require.NoError(t, err)
	assert.True(t, handled)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestError_TextGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: out, ErrWriter: errOut}

	require.NoError(t, f.Error(ErrCodeArtifactRead, "cannot read", nil))

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error [ARTIFACT_READ_FAILED]: cannot read")
}

func TestError_JSONGoesToWriter(t *testing.T) {
	out := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out}

	require.NoError(t, f.Error(ErrCodeJournal, "bad journal", []string{"detail"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeJournal, resp.Error.Code)
}

func TestVerboseLog_OnlyWhenVerbose(t *testing.T) {
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}, ErrWriter: errOut}

	f.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	f.Verbose = true
	f.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
}
