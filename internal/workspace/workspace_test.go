package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionDirsAreUniquePerSession(t *testing.T) {
	root, err := New(filepath.Join(t.TempDir(), "work"))
	require.NoError(t, err)

	first, err := root.SessionDir(42)
	require.NoError(t, err)
	second, err := root.SessionDir(42)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.DirExists(t, first)
	assert.DirExists(t, second)
}

func TestRemoveDeletesContents(t *testing.T) {
	root, err := New(t.TempDir())
	require.NoError(t, err)

	dir, err := root.SessionDir(7)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("data"), 0o600))

	require.NoError(t, Remove(dir))
	assert.NoDirExists(t, dir)
}

func TestRemoveEmptyPathIsNoop(t *testing.T) {
	require.NoError(t, Remove(""))
}
