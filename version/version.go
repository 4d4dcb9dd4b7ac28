// Package version provides build and version information for ethpm, using the VCS metadata embedded by the Go
// toolchain at build time unless it was set explicitly via ldflags.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Masterminds/semver"
)

// These variables can be set via ldflags at build time. Empty values are filled from the embedded build info.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// GitCommit is the git commit hash.
	GitCommit = ""
	// GitCommitTime is the RFC 3339 timestamp of the git commit.
	GitCommitTime = ""
	// GitTreeDirty is "true" if the git tree had uncommitted changes at build time.
	GitTreeDirty = ""
)

// Info describes the version information of the build.
type Info struct {
	Version       string
	GitCommit     string
	GitCommitTime string
	GitTreeDirty  bool
	GoVersion     string
}

// GetInfo returns the version information of the running binary.
func GetInfo() Info {
	info := Info{
		Version:       Version,
		GitCommit:     GitCommit,
		GitCommitTime: GitCommitTime,
		GitTreeDirty:  GitTreeDirty == "true",
		GoVersion:     runtime.Version(),
	}
	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.applyBuildSettings(buildInfo.Settings)
	}
	return info
}

// applyBuildSettings fills VCS fields which were not set via ldflags from the embedded build settings.
func (i *Info) applyBuildSettings(settings []debug.BuildSetting) {
	for _, setting := range settings {
		switch setting.Key {
		case "vcs.revision":
			if i.GitCommit == "" {
				i.GitCommit = setting.Value
			}
		case "vcs.time":
			if i.GitCommitTime == "" {
				i.GitCommitTime = setting.Value
			}
		case "vcs.modified":
			if GitTreeDirty == "" {
				i.GitTreeDirty = setting.Value == "true"
			}
		}
	}
}

// SemVer parses Version as a semantic version.
func (i Info) SemVer() (*semver.Version, error) {
	return semver.NewVersion(i.Version)
}

// ShortCommit returns the first 7 characters of the git commit hash.
func (i Info) ShortCommit() string {
	if len(i.GitCommit) > 7 {
		return i.GitCommit[:7]
	}
	return i.GitCommit
}

// commit returns the short commit hash, suffixed with "-dirty" for builds of a modified tree.
func (i Info) commit() string {
	if i.GitTreeDirty {
		return i.ShortCommit() + "-dirty"
	}
	return i.ShortCommit()
}

// FormattedTime returns the commit time in a human-readable format, or "unknown" if it is not available.
func (i Info) FormattedTime() string {
	if i.GitCommitTime == "" {
		return "unknown"
	}
	t, err := time.Parse(time.RFC3339, i.GitCommitTime)
	if err != nil {
		return i.GitCommitTime
	}
	return t.UTC().Format("2006-01-02 15:04:05 MST")
}

// String returns a formatted multi-line version string.
func (i Info) String() string {
	lines := []string{fmt.Sprintf("ethpm version %s", i.Version)}
	if i.GitCommit != "" {
		lines = append(lines, fmt.Sprintf("  Commit:     %s", i.commit()))
	}
	if i.GitCommitTime != "" {
		lines = append(lines, fmt.Sprintf("  Built:      %s", i.FormattedTime()))
	}
	lines = append(lines, fmt.Sprintf("  Go version: %s", i.GoVersion))
	return strings.Join(lines, "\n") + "\n"
}

// Short returns a single-line version string suitable for --version output.
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	return i.Version + "+" + i.commit()
}
