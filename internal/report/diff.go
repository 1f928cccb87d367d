package report

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff renders a line-oriented diff of before vs after, one prefixed
// line per source line: "  " unchanged, "- " removed, "+ " added.
// Returns "" when the texts are identical, so callers can skip the
// preview entirely for no-op runs.
func Diff(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	// Line-mode diff: map lines to runes, diff the rune strings, then
	// rehydrate. Char-level diffs are noise for whole-file previews.
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range splitKeepingTrailing(d.Text) {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// splitKeepingTrailing splits text into lines, dropping the empty
// remainder after a trailing newline but keeping a final unterminated
// line.
func splitKeepingTrailing(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
