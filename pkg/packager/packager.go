// Package packager persists a chunked document as an upload-ready directory:
// the full document, numbered chunk files, a manifest and a zip archive of all
// three. The output directory is replaced only after every file is written.
package packager

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ctxpack/pkg/chunk"
	"ctxpack/pkg/document"
	"ctxpack/pkg/fsx"

	"github.com/klauspost/compress/zip"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	DocumentFile = "project_context.md"
	ManifestFile = "manifest.json"
	ChunksDir    = "chunks"
)

// minChunkDigits is the minimum zero-padded width of chunk file names.
const minChunkDigits = 4

// archiveEpoch is stamped on every zip entry so archive bytes depend only on content.
var archiveEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// writeArchiveFunc is swapped in tests to simulate archive failures.
var writeArchiveFunc = writeArchive

// Output lists the files a successful Write produced.
type Output struct {
	Dir      string
	Document string
	Manifest string
	Archive  string
	Chunks   []string
}

// ArchiveName is the zip file name for a project.
func ArchiveName(project string) string {
	return project + "_context.zip"
}

// ChunkFileName is the slash-separated name of chunk index out of total.
func ChunkFileName(index, total int) string {
	width := max(minChunkDigits, len(strconv.Itoa(total)))
	return fmt.Sprintf("%s/%0*d.md", ChunksDir, width, index)
}

type entry struct {
	name string // Slash-separated path inside the output directory.
	data []byte
}

// Write stages doc, chunks and m next to outDir and swaps the staged directory
// into place. m's document, chunk and archive fields are overwritten with what
// was written. On error the previous outDir is left as it was.
func Write(doc document.Document, chunks []chunk.Chunk, m *Manifest, outDir string, logger *zap.Logger) (out Output, err error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	outDir, err = filepath.Abs(outDir)
	if err != nil {
		return Output{}, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	parent := filepath.Dir(outDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return Output{}, fmt.Errorf("failed to create output parent: %w", err)
	}

	staging, err := os.MkdirTemp(parent, "."+filepath.Base(outDir)+".staging-*")
	if err != nil {
		return Output{}, fmt.Errorf("failed to create staging directory: %w", err)
	}
	logger.Debug("Created staging directory", zap.String("staging", staging))
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.RemoveAll(staging))
		}
	}()
	// MkdirTemp creates 0700; the published directory matches its subdirectories.
	if err := os.Chmod(staging, 0o755); err != nil {
		return Output{}, fmt.Errorf("failed to set staging directory mode: %w", err)
	}

	entries := []entry{{name: DocumentFile, data: []byte(doc.Text)}}
	fillManifest(doc, chunks, m, filepath.Base(outDir))
	for i, c := range chunks {
		entries = append(entries, entry{name: m.Chunks[i].File, data: []byte(c.Text)})
	}
	manifest, err := m.encode()
	if err != nil {
		return Output{}, fmt.Errorf("failed to encode manifest: %w", err)
	}
	entries = append(entries, entry{name: ManifestFile, data: manifest})

	for _, e := range entries {
		if err := fsx.WriteFile(filepath.Join(staging, filepath.FromSlash(e.name)), e.data, 0o644); err != nil {
			return Output{}, fmt.Errorf("failed to write %s: %w", e.name, err)
		}
	}
	if err := writeArchiveFunc(filepath.Join(staging, m.Archive), entries); err != nil {
		return Output{}, fmt.Errorf("failed to write archive: %w", err)
	}

	if err := swapDir(staging, outDir, logger); err != nil {
		return Output{}, err
	}

	out = Output{
		Dir:      outDir,
		Document: filepath.Join(outDir, DocumentFile),
		Manifest: filepath.Join(outDir, ManifestFile),
		Archive:  filepath.Join(outDir, m.Archive),
	}
	for _, e := range m.Chunks {
		out.Chunks = append(out.Chunks, filepath.Join(outDir, filepath.FromSlash(e.File)))
	}
	logger.Info("Wrote context pack",
		zap.String("outDir", outDir),
		zap.Int("chunks", len(chunks)),
		zap.Int("totalBytes", doc.Size()),
	)
	return out, nil
}

func fillManifest(doc document.Document, chunks []chunk.Chunk, m *Manifest, dirName string) {
	sum := sha256.Sum256([]byte(doc.Text))
	m.DocumentFile = DocumentFile
	m.TotalBytes = doc.Size()
	m.SHA256 = hex.EncodeToString(sum[:])
	m.NumChunks = len(chunks)
	m.ChunkSizes = make([]int, 0, len(chunks))
	m.Chunks = make([]ChunkEntry, 0, len(chunks))
	for _, c := range chunks {
		m.ChunkSizes = append(m.ChunkSizes, c.Size())
		m.Chunks = append(m.Chunks, ChunkEntry{
			Index:        c.Index,
			File:         ChunkFileName(c.Index, len(chunks)),
			Bytes:        c.Size(),
			Start:        c.Start,
			End:          c.End,
			FirstSection: c.FirstSection,
			LastSection:  c.LastSection,
		})
	}
	project := m.ProjectName
	if project == "" {
		project = strings.TrimSuffix(dirName, "_context")
	}
	m.Archive = ArchiveName(project)
}

// swapDir moves staging to outDir. An existing outDir is set aside first and
// restored if the final rename fails.
func swapDir(staging, outDir string, logger *zap.Logger) error {
	backup := ""
	if _, err := os.Lstat(outDir); err == nil {
		backup = staging + ".previous"
		if err := fsx.Rename(outDir, backup); err != nil {
			return fmt.Errorf("failed to move previous output aside: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to inspect output directory: %w", err)
	}

	if err := fsx.Rename(staging, outDir); err != nil {
		if backup != "" {
			err = multierr.Append(err, fsx.Rename(backup, outDir))
		}
		return fmt.Errorf("failed to move staged output into place: %w", err)
	}

	if backup != "" {
		if err := os.RemoveAll(backup); err != nil {
			logger.Warn("Failed to remove previous output", zap.String("path", backup), zap.Error(err))
		}
	}
	return nil
}

func writeArchive(dst string, entries []entry) (err error) {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     path.Clean(e.name),
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		})
		if err != nil {
			return multierr.Append(err, zw.Close())
		}
		if _, err := w.Write(e.data); err != nil {
			return multierr.Append(err, zw.Close())
		}
	}
	return zw.Close()
}
