// Package version holds build identification for apiscan binaries.
package version

import "runtime/debug"

// Overridden at link time:
//
//	go build -ldflags "-X apiscan/internal/version.Version=1.0.0 -X apiscan/internal/version.Commit=abc123"
var (
	// Version is the semantic version of apiscan
	Version = "0.4.0"

	// Commit is the VCS revision the binary was built from
	Commit = "unknown"

	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Revision returns Commit, falling back to the vcs.revision setting embedded by
// the Go toolchain when no ldflags override was given.
func Revision() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := readBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			return s.Value
		}
	}
	return Commit
}

// Info returns the version with an abbreviated revision when one is known.
func Info() string {
	rev := Revision()
	if rev != "unknown" && len(rev) > 7 {
		return Version + " (" + rev[:7] + ")"
	}
	return Version
}

// Full returns the multi-line version banner printed by `apiscan --version`.
func Full() string {
	return "apiscan version " + Version + "\n" +
		"Commit: " + Revision() + "\n" +
		"Built: " + BuildDate
}
