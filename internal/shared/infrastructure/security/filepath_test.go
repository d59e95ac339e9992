package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilePath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := ValidateFilePath("")
		assert.ErrorContains(t, err, "cannot be empty")
	})

	t.Run("rejects shell characters", func(t *testing.T) {
		for _, char := range dangerousChars {
			_, err := ValidateFilePath("/tmp/clinicq" + char + ".db")
			assert.ErrorContains(t, err, "forbidden character", "char %q", char)
		}
	})

	t.Run("relative becomes absolute", func(t *testing.T) {
		result, err := ValidateFilePath("ledger.db")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("resolves symlinks", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "target.db")
		require.NoError(t, os.WriteFile(target, nil, 0o600))
		link := filepath.Join(dir, "link.db")
		require.NoError(t, os.Symlink(target, link))

		result, err := ValidateFilePath(link)
		require.NoError(t, err)
		expected, _ := filepath.EvalSymlinks(target)
		assert.Equal(t, expected, result)
	})

	t.Run("missing file is fine", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "new", "clinicq.db")
		result, err := ValidateFilePath(path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(path), filepath.Base(result))
	})
}

func TestValidateFilePathInDir(t *testing.T) {
	dir := t.TempDir()

	_, err := ValidateFilePathInDir(filepath.Join(dir, "clinicq.db"), dir)
	assert.NoError(t, err)

	_, err = ValidateFilePathInDir(filepath.Join(dir, "..", "escape.db"), dir)
	assert.ErrorContains(t, err, "escapes base directory")

	_, err = ValidateFilePathInDir("x.db", "")
	assert.ErrorContains(t, err, "base directory cannot be empty")
}
