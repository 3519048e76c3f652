// Package pack runs the end-to-end pipeline: load ignore rules, collect files,
// optionally redact them, assemble the document, split it into chunks and write
// the output directory.
package pack

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ctxpack/pkg/chunk"
	"ctxpack/pkg/collect"
	"ctxpack/pkg/config"
	"ctxpack/pkg/document"
	"ctxpack/pkg/ignore"
	"ctxpack/pkg/packager"
	"ctxpack/pkg/redact"
	"ctxpack/pkg/version"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// now is swapped in tests.
var now = time.Now

// Summary is the outcome of a successful run.
type Summary struct {
	Output   packager.Output
	Manifest packager.Manifest
	Elapsed  time.Duration
}

// Run executes one pack run with a validated configuration.
func Run(cfg config.Config, logger *zap.Logger) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	startTime := now()
	runID := uuid.NewString()
	logger = logger.With(zap.String("runId", runID))
	logger.Info("Starting pack", zap.String("root", cfg.Root), zap.String("outDir", cfg.OutDir()))

	matcher, err := ignore.Load(cfg.Root, cfg.IgnoreFile, cfg.ForceInclude, logger)
	if err != nil {
		logger.Error("Failed to load ignore patterns", zap.Error(err))
		return Summary{}, fmt.Errorf("failed to load ignore patterns: %w", err)
	}
	logger.Debug("Loaded ignore patterns", zap.Int("totalPatterns", matcher.Patterns()))

	collected, err := collect.Collect(cfg.Root, collect.Options{
		IncludeExts:  cfg.IncludeExts,
		MaxFileBytes: cfg.MaxFileBytes,
		ExcludeDirs:  excludeDirs(cfg),
	}, matcher, logger)
	if err != nil {
		logger.Error("Failed to collect files", zap.Error(err))
		return Summary{}, fmt.Errorf("failed to collect files: %w", err)
	}
	if len(collected.Records) == 0 {
		logger.Warn("No files to pack after filtering.")
	}
	for _, s := range collected.Skipped {
		logger.Warn("Skipped file", zap.String("relPath", s.RelPath), zap.String("reason", s.Reason))
	}

	records := collected.Records
	var findings redact.Findings
	if cfg.Redact {
		records, findings = redactRecords(records, redact.New())
		logger.Info("Redacted records", zap.Int("matches", findings.Total()), zap.Strings("rules", findings.Names()))
	}

	doc := document.Assemble(cfg.Root, records)
	chunks, err := chunk.Split(doc, cfg.MaxBytes)
	if err != nil {
		logger.Error("Failed to split document", zap.Error(err))
		return Summary{}, fmt.Errorf("failed to split document: %w", err)
	}
	logger.Debug("Split document",
		zap.String("documentSize", humanize.Bytes(uint64(doc.Size()))),
		zap.Int("chunks", len(chunks)))

	binary, truncated := collected.Counts()
	manifest := packager.Manifest{
		RunID:             runID,
		ToolVersion:       version.Get().UserAgent(),
		Root:              cfg.Root,
		ProjectName:       cfg.ProjectName,
		BuiltAtUTC:        startTime.UTC().Format(time.RFC3339),
		NumFilesIncluded:  len(records),
		NumFilesExcluded:  collected.Excluded,
		NumFilesBinary:    binary,
		NumFilesTruncated: truncated,
		Skipped:           collected.Skipped,
		FilesSample:       packager.FilesSample(records),
		Config: packager.RunConfig{
			MaxBytes:     cfg.MaxBytes,
			MaxFileBytes: cfg.MaxFileBytes,
			IncludeExts:  cfg.IncludeExts,
			ForceInclude: cfg.ForceInclude,
			IgnoreFile:   cfg.IgnoreFile,
			ConfigFile:   cfg.ConfigFile,
			Redact:       cfg.Redact,
		},
	}
	if cfg.Redact {
		manifest.Redaction = findings
	}

	out, err := packager.Write(doc, chunks, &manifest, cfg.OutDir(), logger)
	if err != nil {
		logger.Error("Failed to write output", zap.String("outDir", cfg.OutDir()), zap.Error(err))
		return Summary{}, fmt.Errorf("failed to write output: %w", err)
	}

	summary := Summary{Output: out, Manifest: manifest, Elapsed: now().Sub(startTime)}
	logger.Info("Pack completed",
		zap.Int("included", manifest.NumFilesIncluded),
		zap.Int("excluded", manifest.NumFilesExcluded),
		zap.Int("chunks", manifest.NumChunks),
		zap.String("totalSize", humanize.Bytes(uint64(manifest.TotalBytes))),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// excludeDirs lists the directories a run must not pack: its own output
// directory, and the whole output parent when it sits below the root so other
// projects' packs are skipped too.
func excludeDirs(cfg config.Config) []string {
	dirs := []string{cfg.OutDir()}
	rel, err := filepath.Rel(cfg.Root, cfg.OutParent)
	if err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel) {
		dirs = append(dirs, cfg.OutParent)
	}
	return dirs
}

// redactRecords returns copies of the text records with secrets replaced.
// Binary placeholders are left alone.
func redactRecords(records []collect.FileRecord, r *redact.Redactor) ([]collect.FileRecord, redact.Findings) {
	findings := redact.Findings{}
	out := make([]collect.FileRecord, 0, len(records))
	for _, rec := range records {
		if rec.Kind != collect.KindText {
			out = append(out, rec)
			continue
		}
		text, f := r.RedactWithFindings(rec.Content)
		findings.Add(f)
		out = append(out, rec.WithContent(text))
	}
	return out, findings
}
