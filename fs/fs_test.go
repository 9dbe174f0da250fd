package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/sawchat"
	"github.com/fwojciec/sawchat/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveArtifact(t *testing.T) {
	t.Parallel()

	t.Run("writes into dir", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path, err := fs.SaveArtifact(dir, sawchat.Artifact{Filename: "report.csv", Data: []byte("a,b\n")})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "report.csv"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a,b\n", string(data))
	})

	t.Run("creates missing directories", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "a", "b")
		path, err := fs.SaveArtifact(dir, sawchat.Artifact{Filename: "x.csv"})
		require.NoError(t, err)
		assert.FileExists(t, path)
	})

	t.Run("overwrites keeping permissions", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		existing := filepath.Join(dir, "report.csv")
		require.NoError(t, os.WriteFile(existing, []byte("old"), 0o600))

		_, err := fs.SaveArtifact(dir, sawchat.Artifact{Filename: "report.csv", Data: []byte("new")})
		require.NoError(t, err)

		data, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data))
		info, err := os.Stat(existing)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("strips directories from the name", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path, err := fs.SaveArtifact(dir, sawchat.Artifact{Filename: "../../etc/report.csv"})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "report.csv"), path)
	})

	t.Run("empty name falls back to default", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path, err := fs.SaveArtifact(dir, sawchat.Artifact{})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, sawchat.DefaultArtifactName), path)
	})
}
