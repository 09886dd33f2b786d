// Package cmd implements logcove's cobra CLI surface: the root command, the
// serve subcommand that runs the HTTP service, and the stream subcommand
// that manages streams against the object store directly.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// versionInfo carries the build-time identity cmd/logcove/main.go sets via
// SetVersionInfo; reported by `logcove version` and the /version route.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{Version: "dev", Commit: "HEAD", BuildDate: "unknown"}

// SetVersionInfo records the build-time version identity. Called once from
// cmd/logcove/main.go before Execute.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "logcove",
	Short: "logcove is an append-only, time-partitioned event log service",
	Long: `logcove ingests JSON events over HTTP, partitions them by time into
columnar files in object storage, and serves counts and file-scan queries
back out. See the serve and stream subcommands.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config file (optional; LOGCOVE_ env vars and flags also apply)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the logcove version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("logcove %s (commit %s, built %s)\n", versionInfo.Version, versionInfo.Commit, versionInfo.BuildDate)
	},
}

// Execute runs the root command, exiting the process with status 1 on
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
