// Package version holds build information set via ldflags.
package version

// Set at build time with -ldflags "-X github.com/Norgate-AV/fsstage/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
