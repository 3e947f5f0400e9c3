// Package version holds the build metadata of the kuntatinte binary. The
// values are set with -ldflags "-X github.com/jmylchreest/kuntatinte/internal/version.Version=x.y.z"
// and likewise for Commit and Date.
package version

import (
	"fmt"
	"runtime"
)

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the bare version, as shown by --version.
func Short() string { return Version }

// String describes the build on one line, including the commit and date when
// they were injected.
func String() string {
	platform := runtime.GOOS + "/" + runtime.GOARCH
	if Commit == "unknown" || Date == "unknown" {
		return fmt.Sprintf("kuntatinte version %s (%s, %s)", Version, runtime.Version(), platform)
	}
	commit := Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("kuntatinte version %s (commit: %s, built: %s, %s, %s)",
		Version, commit, Date, runtime.Version(), platform)
}
