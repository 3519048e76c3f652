package packager

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ctxpack/pkg/chunk"
	"ctxpack/pkg/collect"
	"ctxpack/pkg/document"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPack(t *testing.T, maxBytes int, contents ...string) (document.Document, []chunk.Chunk) {
	t.Helper()
	records := make([]collect.FileRecord, 0, len(contents))
	for i, c := range contents {
		records = append(records, collect.FileRecord{
			RelPath: string(rune('a'+i)) + ".txt",
			Kind:    collect.KindText,
			Content: c,
		})
	}
	doc := document.Assemble("/work/demo", records)
	chunks, err := chunk.Split(doc, maxBytes)
	require.NoError(t, err)
	return doc, chunks
}

func readManifest(t *testing.T, path string) Manifest {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestChunkFileName(t *testing.T) {
	assert.Equal(t, "chunks/0001.md", ChunkFileName(1, 3))
	assert.Equal(t, "chunks/0042.md", ChunkFileName(42, 9999))
	assert.Equal(t, "chunks/00007.md", ChunkFileName(7, 10000))
}

func TestWrite_ProducesAllArtifacts(t *testing.T) {
	doc, chunks := buildPack(t, 600, strings.Repeat("x", 500), strings.Repeat("y", 500))
	require.Greater(t, len(chunks), 1)
	outDir := filepath.Join(t.TempDir(), "projects_context", "demo_context")

	m := &Manifest{ProjectName: "demo", Root: "/work/demo"}
	out, err := Write(doc, chunks, m, outDir, nil)
	require.NoError(t, err)

	assert.Equal(t, outDir, out.Dir)
	data, err := os.ReadFile(out.Document)
	require.NoError(t, err)
	assert.Equal(t, doc.Text, string(data))

	var joined strings.Builder
	require.Len(t, out.Chunks, len(chunks))
	for i, path := range out.Chunks {
		assert.Equal(t, filepath.Join(outDir, "chunks", ChunkFileName(i+1, len(chunks))[len("chunks/"):]), path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		joined.Write(data)
	}
	assert.Equal(t, doc.Text, joined.String())

	got := readManifest(t, out.Manifest)
	assert.Equal(t, len(chunks), got.NumChunks)
	assert.Equal(t, doc.Size(), got.TotalBytes)
	assert.Len(t, got.SHA256, 64)
	assert.Equal(t, "demo_context.zip", got.Archive)
	assert.Equal(t, DocumentFile, got.DocumentFile)
	assert.Equal(t, "chunks/0001.md", got.Chunks[0].File)
	assert.Equal(t, "tree", got.Chunks[0].FirstSection)
	assert.NotNil(t, got.Skipped)

	zr, err := zip.OpenReader(out.Archive)
	require.NoError(t, err)
	defer zr.Close()
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
	}
	assert.Contains(t, names, DocumentFile)
	assert.Contains(t, names, ManifestFile)
	assert.Contains(t, names, "chunks/0001.md")
	assert.Len(t, names, 2+len(chunks))

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	first, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, doc.Text, string(first))
}

func TestWrite_OutputDirMode(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "demo_context")
	doc, chunks := buildPack(t, 1_000_000, "hello")

	_, err := Write(doc, chunks, &Manifest{ProjectName: "demo"}, outDir, nil)
	require.NoError(t, err)

	for _, dir := range []string{outDir, filepath.Join(outDir, ChunksDir)} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), dir)
	}
}

func TestWrite_RemovesStaleChunks(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "demo_context")

	doc, chunks := buildPack(t, 300, strings.Repeat("x", 250), strings.Repeat("y", 250), strings.Repeat("z", 250))
	_, err := Write(doc, chunks, &Manifest{ProjectName: "demo"}, outDir, nil)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	doc, chunks = buildPack(t, 1_000_000, "small")
	out, err := Write(doc, chunks, &Manifest{ProjectName: "demo"}, outDir, nil)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(outDir, ChunksDir))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Len(t, out.Chunks, 1)

	siblings, err := os.ReadDir(filepath.Dir(outDir))
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "staging and backup directories are cleaned up")
}

func TestWrite_FailureKeepsPreviousOutput(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "demo_context")
	doc, chunks := buildPack(t, 1_000_000, "first run")
	_, err := Write(doc, chunks, &Manifest{ProjectName: "demo"}, outDir, nil)
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(outDir, DocumentFile))
	require.NoError(t, err)

	boom := errors.New("disk full")
	writeArchiveFunc = func(string, []entry) error { return boom }
	t.Cleanup(func() { writeArchiveFunc = writeArchive })

	doc, chunks = buildPack(t, 1_000_000, "second run")
	_, err = Write(doc, chunks, &Manifest{ProjectName: "demo"}, outDir, nil)
	require.ErrorIs(t, err, boom)

	after, err := os.ReadFile(filepath.Join(outDir, DocumentFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	siblings, err := os.ReadDir(filepath.Dir(outDir))
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "staging directory is removed on failure")
}

func TestFilesSample(t *testing.T) {
	records := make([]collect.FileRecord, 25)
	for i := range records {
		records[i].RelPath = string(rune('a' + i))
	}
	sample := FilesSample(records)
	assert.Len(t, sample, FilesSampleSize)
	assert.Equal(t, "a", sample[0])
	assert.Empty(t, FilesSample(nil))
}
