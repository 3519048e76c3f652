// Package version reports which ctxpack build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X ctxpack/pkg/version.Version=v0.3.0" and friends.
// Builds from `go install` fall back to the module and VCS data in the binary.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Info describes one build.
type Info struct {
	Version   string
	GitCommit string
	BuildTime string
	Modified  bool // Built from a dirty tree.
	GoVersion string
	Platform  string
}

// Get returns the running build. Values stamped at link time win over build info.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := readBuildInfo(); ok {
		info = withBuildInfo(info, bi)
	}
	return info
}

func withBuildInfo(info Info, bi *debug.BuildInfo) Info {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "none" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// UserAgent is stamped into manifests as tool_version.
func (i Info) UserAgent() string {
	return "ctxpack/" + i.Version
}

// String is the one-line form printed by `ctxpack version`, e.g.
//
//	ctxpack v0.3.0 (commit 1f2e3d4, built 2026-03-01T15:04:05Z, go1.23.1 linux/amd64)
func (i Info) String() string {
	commit := i.GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if i.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("ctxpack %s (commit %s, built %s, %s %s)",
		i.Version, commit, i.BuildTime, i.GoVersion, i.Platform)
}
