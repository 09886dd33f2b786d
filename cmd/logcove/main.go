// Command logcove is the entry point for the logcove service and its CLI.
package main

import "github.com/3leaps/logcove/internal/cmd"

// version, commit, and buildDate are set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "HEAD"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	cmd.Execute()
}
