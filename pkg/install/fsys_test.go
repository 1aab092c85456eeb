package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fs := OSFileSystem{}
	dir := t.TempDir()

	path := filepath.Join(dir, "bin")
	writeFile(t, path, []byte("x"))

	assert.True(t, fs.Exists(path))
	assert.False(t, fs.Exists(filepath.Join(dir, "missing")))
	assert.False(t, fs.Exists(filepath.Join(dir, "no", "such", "path")))
}

func TestOSFileSystem_ExistsUnreadableParent(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits do not apply to root")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Mkdir(locked, 0755))
	inner := filepath.Join(locked, "bin")
	writeFile(t, inner, []byte("x"))
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	// A path that cannot be stat'd must not look absent: treating it as
	// missing would skip its backup right before a destructive swap.
	assert.True(t, OSFileSystem{}.Exists(inner))
}
