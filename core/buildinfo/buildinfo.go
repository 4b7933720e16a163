// Package buildinfo carries version metadata stamped by the release build.
package buildinfo

import "fmt"

// Set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/tripbot/core/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/tripbot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/tripbot/core/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	// Version reports the semantic version or tag of the build.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String renders the build metadata for `tripbot --version`.
func String() string {
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
