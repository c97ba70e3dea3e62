// Package cmd contains build-time variables injected via ldflags.
package cmd

import "fmt"

// Build-time variables set via ldflags.
var (
	// Version is the semantic version of the build.
	Version = "dev"
	// Commit is the git commit SHA of the build.
	Commit = "none"
	// Date is the build date.
	Date = "unknown"
)

// BuildInfo is the version triple printed by "mcpkit version".
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build variables.
func Info() BuildInfo {
	return BuildInfo{Version: Version, Commit: Commit, Date: Date}
}

// String formats the build info for humans.
func (b BuildInfo) String() string {
	return fmt.Sprintf("mcpkit version %s\n  commit: %s\n  built:  %s", b.Version, b.Commit, b.Date)
}
