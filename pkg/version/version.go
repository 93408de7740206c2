// Package version carries build-time version metadata for the devdedup binary.
package version

// Values are injected at build time via -ldflags.
var (
	// Version is the semantic version of the binary.
	Version = "dev"

	// Commit is the git hash the binary was built from.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)
