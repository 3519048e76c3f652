package redact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func sampleTree() map[string]string {
	return map[string]string{
		".env":            "API_KEY=sk-abcdefghijklmnopqrstuvwx\n",
		"app/settings.py": "PASSWORD = \"hunter2\"\nDEBUG = True\n",
		"README.md":       "# Demo\n",
		"main.go":         "package main\n",
		"assets/logo.png": "\x89PNG\x00\x01\x02",
	}
}

func TestIsTextCandidate(t *testing.T) {
	assert.True(t, IsTextCandidate("config.YAML"))
	assert.True(t, IsTextCandidate(".env"))
	assert.True(t, IsTextCandidate(".npmrc"))
	assert.False(t, IsTextCandidate("logo.png"))
	assert.False(t, IsTextCandidate("Makefile"))
}

func TestMirror_RedactsCopyAndKeepsOriginals(t *testing.T) {
	files := sampleTree()
	root := writeTree(t, files)
	mirror := filepath.Join(t.TempDir(), "mirror")

	res, err := New().Mirror(root, mirror, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{".env", "app/settings.py"}, res.Changed)
	assert.Equal(t, 3, res.Copied)
	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, 1, res.Findings["api-key"])
	assert.Equal(t, 1, res.Findings["credential"])

	assert.Equal(t, "API_KEY=<REDACTED:api-key>\n", readFile(t, filepath.Join(mirror, ".env")))
	assert.Equal(t, "PASSWORD = \"<REDACTED:credential>\"\nDEBUG = True\n", readFile(t, filepath.Join(mirror, "app", "settings.py")))
	for _, rel := range []string{"README.md", "main.go", "assets/logo.png"} {
		assert.Equal(t, files[rel], readFile(t, filepath.Join(mirror, filepath.FromSlash(rel))), rel)
	}
	for rel, content := range files {
		assert.Equal(t, content, readFile(t, filepath.Join(root, filepath.FromSlash(rel))), rel)
	}
}

func TestMirror_RejectsNonEmptyTarget(t *testing.T) {
	root := writeTree(t, sampleTree())
	mirror := writeTree(t, map[string]string{"keep.txt": "x"})

	_, err := New().Mirror(root, mirror, nil)
	assert.ErrorIs(t, err, ErrMirrorNotEmpty)
	assert.Equal(t, "x", readFile(t, filepath.Join(mirror, "keep.txt")))
}

func TestMirror_SkipsItselfInsideRoot(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "token: abcdef\n"})
	mirror := filepath.Join(root, "redacted")

	res, err := New().Mirror(root, mirror, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt"}, res.Changed)
	assert.NoDirExists(t, filepath.Join(mirror, "redacted"))
	assert.Equal(t, "token: <REDACTED:credential>\n", readFile(t, filepath.Join(mirror, "a.txt")))
}

func TestMirror_MissingRoot(t *testing.T) {
	_, err := New().Mirror(filepath.Join(t.TempDir(), "nope"), t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrRootMissing)
}

func TestInPlace_RewritesOnlyChangedFiles(t *testing.T) {
	files := sampleTree()
	root := writeTree(t, files)
	readme := filepath.Join(root, "README.md")
	before, err := os.Stat(readme)
	require.NoError(t, err)

	res, err := New().InPlace(root, nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{".env", "app/settings.py"}, res.Changed)
	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, 2, res.Findings.Total())
	assert.Equal(t, "API_KEY=<REDACTED:api-key>\n", readFile(t, filepath.Join(root, ".env")))
	assert.Equal(t, files["assets/logo.png"], readFile(t, filepath.Join(root, "assets", "logo.png")))

	after, err := os.Stat(readme)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())

	info, err := os.Stat(filepath.Join(root, ".env"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestInPlace_SecondRunChangesNothing(t *testing.T) {
	root := writeTree(t, sampleTree())
	_, err := New().InPlace(root, nil)
	require.NoError(t, err)

	res, err := New().InPlace(root, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)
}
