// Package artifact is the filesystem collaborator: it reads the target
// file as one string before the engine runs and writes the final
// content back once after. The engine itself never touches the disk.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Read returns the artifact's full content. A failure here is fatal to
// the run and happens before any patch is attempted, so a read error
// guarantees the artifact was not modified.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read artifact %s: %w", path, err)
	}
	return string(data), nil
}

// Write replaces the artifact's content atomically: the new content is
// written to a temp file in the same directory and renamed over the
// original, so a crash mid-write never leaves a truncated artifact.
// The original file mode is preserved; a new file gets 0644.
func Write(path, content string) error {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stitch-*")
	if err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}
