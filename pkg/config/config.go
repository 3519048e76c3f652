// Package config resolves the effective settings of a pack run from built-in
// defaults, an optional YAML project file, the environment and command-line flags,
// in that order of increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ctxpack/pkg/collect"
	"ctxpack/pkg/ignore"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFileName is the project config file looked up in the root.
	DefaultFileName = ".ctxpack.yaml"
	// DefaultOutParent is the directory that receives <project>_context/.
	DefaultOutParent = "projects_context"
	// DefaultMaxBytes is the per-chunk budget.
	DefaultMaxBytes = 9_000_000
	// DefaultMaxFileBytes caps the text kept from a single file.
	DefaultMaxFileBytes int64 = 16 << 20
	// MinMaxBytes is the smallest chunk budget accepted.
	MinMaxBytes = 4
)

// Flag names shared by RegisterFlags and Load.
const (
	FlagRoot         = "root"
	FlagOutParent    = "out-parent"
	FlagProjectName  = "project-name"
	FlagMaxBytes     = "max-bytes"
	FlagMaxFileBytes = "max-file-bytes"
	FlagIncludeExts  = "include-exts"
	FlagForceInclude = "force-include"
	FlagIgnoreFile   = "ignore-file"
	FlagRedact       = "redact"
	FlagConfig       = "config"
)

// Environment variables read by Load.
const (
	EnvOutParent    = "CTXPACK_OUT_PARENT"
	EnvMaxBytes     = "CTXPACK_MAX_BYTES"
	EnvMaxFileBytes = "CTXPACK_MAX_FILE_BYTES"
	EnvLogLevel     = "CTXPACK_LOG_LEVEL"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the effective configuration of one run.
type Config struct {
	Root         string   // Absolute project root.
	OutParent    string   // Parent of the output directory.
	ProjectName  string   // Defaults to the root's base name.
	MaxBytes     int      // Per-chunk budget in bytes.
	MaxFileBytes int64    // Per-file text cap; 0 disables.
	IncludeExts  []string // Normalized, sorted extensions.
	ForceInclude []string // Relative path prefixes that bypass every filter.
	IgnoreFile   string   // Ignore rules file name, relative to Root.
	Redact       bool     // Redact records before assembly.
	LogLevel     string
	ConfigFile   string // Project config file that was applied, if any.
}

// fileConfig mirrors the YAML project file. Pointers distinguish unset keys.
type fileConfig struct {
	OutParent    *string  `yaml:"out_parent"`
	ProjectName  *string  `yaml:"project_name"`
	MaxBytes     *int     `yaml:"max_bytes"`
	MaxFileBytes *int64   `yaml:"max_file_bytes"`
	IncludeExts  []string `yaml:"include_exts"`
	ForceInclude []string `yaml:"force_include"`
	IgnoreFile   *string  `yaml:"ignore_file"`
	Redact       *bool    `yaml:"redact"`
}

// Defaults returns the built-in configuration for root.
func Defaults(root string) Config {
	return Config{
		Root:         root,
		OutParent:    DefaultOutParent,
		MaxBytes:     DefaultMaxBytes,
		MaxFileBytes: DefaultMaxFileBytes,
		IncludeExts:  append([]string(nil), collect.DefaultIncludeExts...),
		IgnoreFile:   ignore.DefaultFileName,
		LogLevel:     "info",
	}
}

// RegisterFlags defines the pack flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagRoot, "", "Project root to pack (required)")
	fs.String(FlagOutParent, DefaultOutParent, "Directory that receives <project>_context/")
	fs.String(FlagProjectName, "", "Project name (default: root directory name)")
	fs.Int(FlagMaxBytes, DefaultMaxBytes, "Maximum bytes per chunk")
	fs.Int64(FlagMaxFileBytes, DefaultMaxFileBytes, "Maximum bytes of text kept per file (0 disables)")
	fs.StringSlice(FlagIncludeExts, nil, "Comma-separated file extensions to include (default: built-in code/text set)")
	fs.StringSlice(FlagForceInclude, nil, "Comma-separated path prefixes to include regardless of ignore rules")
	fs.String(FlagIgnoreFile, ignore.DefaultFileName, "Ignore rules file name in the project root")
	fs.Bool(FlagRedact, false, "Redact secret-like values before packing")
	fs.String(FlagConfig, "", "Project config file (default: <root>/"+DefaultFileName+")")
}

// Load resolves the configuration for a run. Only flags the user set explicitly
// override lower layers. The root flag must be non-empty.
func Load(flags *pflag.FlagSet) (Config, error) {
	var root, configPath string
	if flags != nil {
		if v, err := flags.GetString(FlagRoot); err == nil {
			root = strings.TrimSpace(v)
		}
		if v, err := flags.GetString(FlagConfig); err == nil {
			configPath = v
		}
	}
	if root == "" {
		return Config{}, fmt.Errorf("%w: --%s is required", ErrInvalid, FlagRoot)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Config{}, fmt.Errorf("%w: failed to resolve root %q: %v", ErrInvalid, root, err)
	}
	cfg := Defaults(absRoot)

	if err := cfg.applyFile(configPath); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	if err := cfg.applyFlags(flags); err != nil {
		return Config{}, err
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyFile merges the YAML project file. An explicit path must exist; the
// default <root>/.ctxpack.yaml is optional.
func (c *Config) applyFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(c.Root, DefaultFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: failed to read config file %s: %v", ErrInvalid, path, err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: failed to parse config file %s: %v", ErrInvalid, path, err)
	}

	if fc.OutParent != nil {
		c.OutParent = *fc.OutParent
	}
	if fc.ProjectName != nil {
		c.ProjectName = *fc.ProjectName
	}
	if fc.MaxBytes != nil {
		c.MaxBytes = *fc.MaxBytes
	}
	if fc.MaxFileBytes != nil {
		c.MaxFileBytes = *fc.MaxFileBytes
	}
	if fc.IncludeExts != nil {
		c.IncludeExts = fc.IncludeExts
	}
	if fc.ForceInclude != nil {
		c.ForceInclude = fc.ForceInclude
	}
	if fc.IgnoreFile != nil {
		c.IgnoreFile = *fc.IgnoreFile
	}
	if fc.Redact != nil {
		c.Redact = *fc.Redact
	}
	c.ConfigFile = path
	return nil
}

func (c *Config) applyEnv() {
	c.OutParent = envStr(EnvOutParent, c.OutParent)
	c.MaxBytes = envInt(EnvMaxBytes, c.MaxBytes)
	c.MaxFileBytes = int64(envInt(EnvMaxFileBytes, int(c.MaxFileBytes)))
	c.LogLevel = envStr(EnvLogLevel, c.LogLevel)
}

func (c *Config) applyFlags(fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	var err error
	if fs.Changed(FlagOutParent) {
		if c.OutParent, err = fs.GetString(FlagOutParent); err != nil {
			return err
		}
	}
	if fs.Changed(FlagProjectName) {
		if c.ProjectName, err = fs.GetString(FlagProjectName); err != nil {
			return err
		}
	}
	if fs.Changed(FlagMaxBytes) {
		if c.MaxBytes, err = fs.GetInt(FlagMaxBytes); err != nil {
			return err
		}
	}
	if fs.Changed(FlagMaxFileBytes) {
		if c.MaxFileBytes, err = fs.GetInt64(FlagMaxFileBytes); err != nil {
			return err
		}
	}
	if fs.Changed(FlagIncludeExts) {
		if c.IncludeExts, err = fs.GetStringSlice(FlagIncludeExts); err != nil {
			return err
		}
	}
	if fs.Changed(FlagForceInclude) {
		if c.ForceInclude, err = fs.GetStringSlice(FlagForceInclude); err != nil {
			return err
		}
	}
	if fs.Changed(FlagIgnoreFile) {
		if c.IgnoreFile, err = fs.GetString(FlagIgnoreFile); err != nil {
			return err
		}
	}
	if fs.Changed(FlagRedact) {
		if c.Redact, err = fs.GetBool(FlagRedact); err != nil {
			return err
		}
	}
	return nil
}

// normalize resolves the output parent against the working directory and
// canonicalizes list settings.
func (c *Config) normalize() error {
	if c.OutParent != "" {
		abs, err := filepath.Abs(c.OutParent)
		if err != nil {
			return fmt.Errorf("%w: failed to resolve output parent %q: %v", ErrInvalid, c.OutParent, err)
		}
		c.OutParent = abs
	}
	c.ProjectName = strings.TrimSpace(c.ProjectName)
	if c.ProjectName == "" {
		c.ProjectName = filepath.Base(c.Root)
	}
	c.IncludeExts = collect.NormalizeExts(c.IncludeExts)

	prefixes := make([]string, 0, len(c.ForceInclude))
	for _, p := range c.ForceInclude {
		if p = ignore.NormalizePrefix(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	c.ForceInclude = prefixes
	return nil
}

// Validate reports the first setting that would make a run fail.
func (c Config) Validate() error {
	info, err := os.Stat(c.Root)
	if err != nil {
		return fmt.Errorf("%w: root %s does not exist", ErrInvalid, c.Root)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root %s is not a directory", ErrInvalid, c.Root)
	}
	if c.MaxBytes < MinMaxBytes {
		return fmt.Errorf("%w: max bytes must be at least %d, got %d", ErrInvalid, MinMaxBytes, c.MaxBytes)
	}
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("%w: max file bytes must not be negative, got %d", ErrInvalid, c.MaxFileBytes)
	}
	if c.ProjectName == "." || c.ProjectName == ".." || strings.ContainsAny(c.ProjectName, `/\`) {
		return fmt.Errorf("%w: project name %q must be a plain directory name", ErrInvalid, c.ProjectName)
	}
	if c.OutParent == "" {
		return fmt.Errorf("%w: output parent must not be empty", ErrInvalid)
	}
	if c.IgnoreFile == "" {
		return fmt.Errorf("%w: ignore file name must not be empty", ErrInvalid)
	}
	return nil
}

// OutDir is the directory a run writes: <OutParent>/<ProjectName>_context.
func (c Config) OutDir() string {
	return filepath.Join(c.OutParent, c.ProjectName+"_context")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
