// Package main is the entry point for the callwatch CLI.
//
// CallWatch can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	callwatch serve -c config.yaml    # Start tracking and the dashboard
//	callwatch add <url> -c config.yaml  # Track another link
//	callwatch status -c config.yaml   # Show heartbeat state
//	callwatch validate -c config.yaml # Validate configuration
//	callwatch version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "callwatch",
	Short: "Track call availability of web profile pages",
	Long: `CallWatch probes tracked profile pages with a headless browser and
records whether each one is available for a call.

Every cycle it visits all tracked links, reads the status labels on the
page, appends an observation to the link's CSV history file, and rewrites
a heartbeat file. A web dashboard serves the recorded histories.

Quick start:
  1. Create a config file (callwatch.yaml)
  2. Run: callwatch serve -c callwatch.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  port: 8080
  poll_interval: 60s
  probe_timeout: 10s
  data_dir: link_tracking_data
  default_link: https://www.astroyogi.com/astrologer/expert/saalivaagana.aspx`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this callwatch binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("callwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
