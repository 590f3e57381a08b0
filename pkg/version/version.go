// Package version provides version information for the arbitro-go application.
package version

// Version is the current version of the arbitro-go application.
const Version = "0.1.0"

// AgentString returns the full agent string with versioning.
// Format: @mtgtools/arbitro-go@v{version}
func AgentString() string {
	return "@mtgtools/arbitro-go@v" + Version
}
