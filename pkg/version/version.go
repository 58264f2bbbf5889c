// Package version carries build metadata, overridden at link time with
// -ldflags "-X github.com/turtacn/kam/pkg/version.Version=...".
package version

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git revision the binary was built from.
	Commit = "unknown"
)
