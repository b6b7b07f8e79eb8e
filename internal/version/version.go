// Package version carries build identification, set via ldflags.
package version

import "fmt"

var (
	// Version is the release version.
	Version = "dev"

	// Commit is the git commit the binary was built from.
	Commit = "unknown"

	// Date is the build date.
	Date = "unknown"
)

// Info returns a one-line version description.
func Info() string {
	return fmt.Sprintf("flowscope %s (%s, built %s)", Version, Commit, Date)
}
