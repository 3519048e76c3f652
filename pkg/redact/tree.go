// File: pkg/redact/tree.go
package redact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ctxpack/pkg/collect"
	"ctxpack/pkg/fsx"

	"go.uber.org/zap"
)

var (
	// ErrRootMissing is returned when the tree root does not exist or is not a directory.
	ErrRootMissing = errors.New("root does not exist or is not a directory")
	// ErrMirrorNotEmpty is returned when the mirror root already holds files.
	ErrMirrorNotEmpty = errors.New("mirror directory already exists and is not empty")
)

// textExtensions are the files considered for redaction.
var textExtensions = map[string]bool{
	".py": true, ".json": true, ".yml": true, ".yaml": true, ".toml": true, ".ini": true,
	".env": true, ".cfg": true, ".conf": true, ".properties": true,
	".html": true, ".htm": true, ".md": true, ".txt": true,
	".js": true, ".ts": true, ".tsx": true, ".jsx": true, ".css": true, ".scss": true,
	".go": true, ".rb": true, ".php": true, ".java": true, ".kt": true, ".rs": true,
	".sh": true, ".bash": true, ".zsh": true, ".ps1": true, ".sql": true, ".xml": true,
	".tf": true, ".tfvars": true,
}

// TreeResult summarizes a tree redaction.
type TreeResult struct {
	Scanned  int      // Text-like files examined.
	Changed  []string // Relative paths whose content was redacted.
	Copied   int      // Files written to the mirror without changes.
	Findings Findings // Matches per rule.
}

// IsTextCandidate reports whether a file name looks like text worth scanning.
// Extension-less dotfiles such as ".env" and ".npmrc" count.
func IsTextCandidate(name string) bool {
	lower := strings.ToLower(name)
	ext := filepath.Ext(lower)
	if textExtensions[ext] {
		return true
	}
	return strings.HasPrefix(lower, ".") && !strings.Contains(lower[1:], ".")
}

// InPlace rewrites text-like files under root whose content changes under redaction.
func (r *Redactor) InPlace(root string, logger *zap.Logger) (TreeResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := TreeResult{Findings: Findings{}}

	absRoot, err := checkRoot(root)
	if err != nil {
		return result, err
	}

	logger.Info("Redacting in place", zap.String("root", absRoot))
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("Error accessing path", zap.String("path", path), zap.Error(walkErr))
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !IsTextCandidate(d.Name()) {
			return nil
		}

		rel := relPath(absRoot, path)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable file", zap.String("relPath", rel), zap.Error(err))
			return nil
		}
		decoded := collect.Decode(data)
		if decoded.Kind != collect.KindText {
			return nil
		}
		result.Scanned++

		redacted, findings := r.RedactWithFindings(decoded.Text)
		if redacted == decoded.Text {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", rel, err)
		}
		if err := fsx.WriteFileAtomic(path, []byte(redacted), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to rewrite %s: %w", rel, err)
		}
		result.Changed = append(result.Changed, rel)
		result.Findings.Add(findings)
		logger.Info("Redacted file", zap.String("relPath", rel), zap.Int("matches", findings.Total()))
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// Mirror writes a complete copy of root under mirrorRoot with text-like files
// redacted. Files under root are never modified.
func (r *Redactor) Mirror(root, mirrorRoot string, logger *zap.Logger) (TreeResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := TreeResult{Findings: Findings{}}

	absRoot, err := checkRoot(root)
	if err != nil {
		return result, err
	}
	absMirror, err := filepath.Abs(mirrorRoot)
	if err != nil {
		return result, fmt.Errorf("failed to resolve mirror path: %w", err)
	}
	if absMirror == absRoot {
		return result, fmt.Errorf("%w: mirror %s is the root itself", ErrMirrorNotEmpty, absMirror)
	}
	empty, err := fsx.IsEmptyDir(absMirror)
	if err != nil {
		return result, fmt.Errorf("failed to inspect mirror directory: %w", err)
	}
	if !empty {
		return result, fmt.Errorf("%w: %s", ErrMirrorNotEmpty, absMirror)
	}
	if err := os.MkdirAll(absMirror, 0o755); err != nil {
		return result, fmt.Errorf("failed to create mirror directory: %w", err)
	}

	logger.Info("Creating redacted mirror", zap.String("root", absRoot), zap.String("mirror", absMirror))
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == absRoot {
			return nil
		}
		rel := relPath(absRoot, path)
		dst := filepath.Join(absMirror, filepath.FromSlash(rel))

		if d.IsDir() {
			if path == absMirror {
				return filepath.SkipDir
			}
			return os.MkdirAll(dst, 0o755)
		}
		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("failed to read link %s: %w", rel, err)
			}
			return os.Symlink(target, dst)
		}
		if !d.Type().IsRegular() {
			logger.Debug("Skipping non-regular file", zap.String("relPath", rel))
			return nil
		}

		changed, findings, err := r.mirrorFile(path, dst, d)
		if err != nil {
			return fmt.Errorf("failed to mirror %s: %w", rel, err)
		}
		if changed {
			result.Scanned++
			result.Changed = append(result.Changed, rel)
			result.Findings.Add(findings)
			logger.Info("Redacted file", zap.String("relPath", rel), zap.Int("matches", findings.Total()))
			return nil
		}
		if findings != nil {
			result.Scanned++
		}
		result.Copied++
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// mirrorFile writes one file into the mirror. findings is nil when the file was
// not scanned as text.
func (r *Redactor) mirrorFile(src, dst string, d fs.DirEntry) (bool, Findings, error) {
	if !IsTextCandidate(d.Name()) {
		return false, nil, fsx.CopyFile(src, dst)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return false, nil, err
	}
	decoded := collect.Decode(data)
	if decoded.Kind != collect.KindText {
		return false, nil, fsx.CopyFile(src, dst)
	}

	info, err := d.Info()
	if err != nil {
		return false, nil, err
	}
	redacted, findings := r.RedactWithFindings(decoded.Text)
	if err := fsx.WriteFile(dst, []byte(redacted), info.Mode().Perm()); err != nil {
		return false, nil, err
	}
	return redacted != decoded.Text, findings, nil
}

func checkRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrRootMissing, absRoot)
	}
	return absRoot, nil
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
