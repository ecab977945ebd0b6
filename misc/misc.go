// Package misc provides information about the program being built.
package misc

import (
	"runtime/debug"
)

const appName = "pervade"

// GetAppName returns program name to be used in various reporting situations.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}
	return "development"
}

// GetGitHash returns hash of the git commit program was built from.
func GetGitHash() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
