package fsutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealkv/internal/domain"
	"sealkv/internal/fsutil"
)

func TestReadFile_MissingIsNil(t *testing.T) {
	b, err := fsutil.ReadFile(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestWriteFileAtomic_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entry")

	require.NoError(t, fsutil.WriteFileAtomic(path, []byte("old"), 0o600))
	require.NoError(t, fsutil.WriteFileAtomic(path, []byte("new"), 0o600))

	b, err := fsutil.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	entries, err := fsutil.ListDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteFileAtomic_MissingDirIsIOError(t *testing.T) {
	err := fsutil.WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "f"), []byte("x"), 0o600)
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemoveTemps(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.entry"+fsutil.TempMarker+"123"), []byte("partial"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.entry"), []byte("whole"), 0o600))

	n, err := fsutil.RemoveTemps(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ok, err := fsutil.Exists(filepath.Join(dir, "b.entry"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemove_MissingIsNoop(t *testing.T) {
	assert.NoError(t, fsutil.Remove(filepath.Join(t.TempDir(), "gone")))
}

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.json")
	type meta struct{ Version int }

	var got meta
	existed, err := fsutil.ReadJSON(path, &got)
	require.NoError(t, err)
	assert.False(t, existed)

	require.NoError(t, fsutil.WriteJSON(path, meta{Version: 3}, 0o600))
	existed, err = fsutil.ReadJSON(path, &got)
	require.NoError(t, err)
	assert.True(t, existed)
	assert.Equal(t, 3, got.Version)
}
