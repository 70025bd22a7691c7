// Package main is the entry point for the uplink CLI.
//
// UpLink can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary
// approach.
//
// Usage:
//
//	uplink serve -c uplink.yaml    # Start the realtime gateway
//	uplink validate -c uplink.yaml # Validate configuration
//	uplink version                 # Show version info
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
	Use:   "uplink",
	Short: "Realtime event gateway for uptime monitoring",
	Long: `UpLink is the realtime event distribution gateway of an
uptime-monitoring platform.

It accepts websocket connections from dashboard clients, authenticates
them against three credential domains (user, contributor, operator),
tracks per-monitor and per-website subscriptions, and fans out status
updates and alerts pushed by the check scheduler.

Quick start:
  1. Create a config file (uplink.yaml)
  2. Export the domain secrets (UPLINK_USER_JWT_SECRET, ...)
  3. Run: uplink serve -c uplink.yaml
  4. Connect clients to ws://localhost:4000/ws

Example config:
  port: 4000
  allowed_origins:
    - https://app.example.com`,
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
	Long:  `Print the version, commit hash, and build date of this uplink binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("uplink %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
