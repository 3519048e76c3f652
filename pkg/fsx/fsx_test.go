package fsx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic_ReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	require.NoError(t, WriteFileAtomic(path, []byte("new"), 0o600))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(b))
	assertNoTemp(t, dir, "a.txt")
}

func TestWriteFileAtomic_RenameFailureKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	old := renameFunc
	renameFunc = func(string, string) error { return os.ErrPermission }
	defer func() { renameFunc = old }()

	err := WriteFileAtomic(path, []byte("new"), 0o644)
	assert.ErrorIs(t, err, os.ErrPermission)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(b))
	assertNoTemp(t, dir, "a.txt")
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	require.NoError(t, os.WriteFile(src, []byte{0, 1, 2, 3}, 0o640))

	dst := filepath.Join(dir, "nested", "dst.bin")
	require.NoError(t, CopyFile(src, dst))

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2, 3}, b)
}

func TestIsEmptyDir(t *testing.T) {
	dir := t.TempDir()

	empty, err := IsEmptyDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.True(t, empty)

	empty, err = IsEmptyDir(dir)
	require.NoError(t, err)
	assert.True(t, empty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x"), nil, 0o644))
	empty, err = IsEmptyDir(dir)
	require.NoError(t, err)
	assert.False(t, empty)
}

func assertNoTemp(t *testing.T, dir, name string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."+name+".tmp-"), "temp file left behind: %s", e.Name())
	}
}
