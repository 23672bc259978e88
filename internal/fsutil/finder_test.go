package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"b.hcl", "a.JSON", "nested/c.yaml", "notes.txt", "nested/deeper/d.hcl"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	t.Run("walks directories and filters by extension", func(t *testing.T) {
		files, err := FindFiles([]string{dir}, ".hcl", ".json", ".yaml")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.JSON"),
			filepath.Join(dir, "b.hcl"),
			filepath.Join(dir, "nested/c.yaml"),
			filepath.Join(dir, "nested/deeper/d.hcl"),
		}, files)
	})

	t.Run("explicit files and duplicates", func(t *testing.T) {
		file := filepath.Join(dir, "b.hcl")
		files, err := FindFiles([]string{file, dir, filepath.Join(dir, "notes.txt")}, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{file, filepath.Join(dir, "nested/deeper/d.hcl")}, files)
	})

	t.Run("missing path is an error", func(t *testing.T) {
		_, err := FindFiles([]string{filepath.Join(dir, "nope")}, ".hcl")
		assert.ErrorContains(t, err, "error accessing path")
	})

	t.Run("no extensions panics", func(t *testing.T) {
		assert.Panics(t, func() { _, _ = FindFiles([]string{dir}) })
	})
}
