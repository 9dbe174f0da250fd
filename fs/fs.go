// Package fs writes downloaded artifacts to disk.
package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/sawchat"
)

// SaveArtifact writes art into dir under the base name of its filename and
// returns the written path. An existing file is overwritten, keeping its
// permissions.
func SaveArtifact(dir string, art sawchat.Artifact) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("fs: create download dir: %w", err)
	}

	path := filepath.Join(dir, baseName(art.Filename))

	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, art.Data, perm); err != nil {
		return "", fmt.Errorf("fs: write artifact: %w", err)
	}
	return path, nil
}

// baseName keeps only the last path element so a server-chosen name cannot
// escape the download dir.
func baseName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." {
		return sawchat.DefaultArtifactName
	}
	return base
}
