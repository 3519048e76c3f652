// Package collect walks a project tree and snapshots the files that survive the
// ignore and extension policy.
package collect

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// PathFilter decides which relative paths survive ignore filtering.
type PathFilter interface {
	ShouldInclude(path string, isDir bool) bool
	IsForced(path string) bool
	HasForcedBelow(dir string) bool
}

// Collect walks root in deterministic order and returns one record per included file,
// sorted by relative path. Per-file read failures are reported in Result.Skipped.
func Collect(root string, opts Options, filter PathFilter, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var result Result

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return result, fmt.Errorf("failed to get absolute path: %w", err)
	}
	exts := extensionSet(opts.IncludeExts)
	excludedDirs := cleanAll(opts.ExcludeDirs)

	logger.Debug("Starting file collection",
		zap.String("root", absRoot),
		zap.Int("includeExts", len(exts)),
		zap.Int64("maxFileBytes", opts.MaxFileBytes))

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == absRoot {
				return walkErr
			}
			logger.Warn("Error accessing path during traversal", zap.String("path", path), zap.Error(walkErr))
			if d == nil || !d.IsDir() {
				result.Skipped = append(result.Skipped, Skipped{RelPath: relPath(absRoot, path), Reason: walkErr.Error()})
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel := relPath(absRoot, path)

		if d.IsDir() {
			if isUnder(path, excludedDirs) {
				logger.Debug("Skipping output directory", zap.String("directory", path))
				return filepath.SkipDir
			}
			if !filter.ShouldInclude(rel, true) && !filter.HasForcedBelow(rel) {
				logger.Debug("Skipping ignored directory during traversal", zap.String("relPath", rel))
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			logger.Debug("Skipping non-regular file", zap.String("relPath", rel), zap.String("mode", d.Type().String()))
			return nil
		}

		forced := filter.IsForced(rel)
		if !forced && !filter.ShouldInclude(rel, false) {
			logger.Debug("File matches ignore pattern", zap.String("relPath", rel))
			result.Excluded++
			return nil
		}
		if !forced && !allowedFile(d.Name(), exts) {
			logger.Debug("File extension not included", zap.String("relPath", rel))
			result.Excluded++
			return nil
		}

		rec, err := readRecord(path, rel, opts.MaxFileBytes)
		if err != nil {
			logger.Warn("Skipping unreadable file", zap.String("relPath", rel), zap.Error(err))
			result.Skipped = append(result.Skipped, Skipped{RelPath: rel, Reason: err.Error()})
			return nil
		}
		if rec.Truncated {
			logger.Debug("Truncated oversized file", zap.String("relPath", rel), zap.Int64("sizeBytes", rec.Size))
		}
		result.Records = append(result.Records, rec)
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	sort.Slice(result.Records, func(i, j int) bool { return result.Records[i].RelPath < result.Records[j].RelPath })
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].RelPath < result.Skipped[j].RelPath })

	logger.Debug("Completed file collection",
		zap.Int("included", len(result.Records)),
		zap.Int("excluded", result.Excluded),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// readRecord reads one file and decodes it. The handle is released before returning.
func readRecord(path, rel string, maxFileBytes int64) (FileRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileRecord{}, err
	}

	rec := FileRecord{
		RelPath: rel,
		AbsPath: path,
		Size:    int64(len(data)),
	}
	decoded := Decode(data)
	rec.Kind = decoded.Kind
	if decoded.Kind == KindBinary {
		rec.Content = BinaryPlaceholder
		return rec, nil
	}
	rec.Content, rec.Truncated = Truncate(decoded.Text, maxFileBytes)
	return rec, nil
}

// allowedFile reports whether the base name carries an included extension.
// Extension-less dotfiles such as ".gitignore" are always allowed.
func allowedFile(name string, exts map[string]bool) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".") && !strings.Contains(lower[1:], ".") {
		return true
	}
	// Every dotted suffix is a candidate so ".env.example" and ".tar.gz" match.
	for i := 0; i < len(lower); i++ {
		if lower[i] == '.' && exts[lower[i:]] {
			return true
		}
	}
	return false
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range NormalizeExts(exts) {
		set[e] = true
	}
	return set
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func cleanAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, filepath.Clean(abs))
		}
	}
	return out
}

func isUnder(path string, bases []string) bool {
	path = filepath.Clean(path)
	for _, base := range bases {
		if path == base || strings.HasPrefix(path, base+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
