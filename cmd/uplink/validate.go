package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/upwatch/uplink/config"
)

// validateCmd validates a config file without starting the gateway.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an UpLink configuration file without starting the gateway.

This command parses the YAML and validates all fields. It does not
require the secret environment variables, so it is safe to run in CI/CD
pipelines before deployment.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  uplink validate -c uplink.yaml
  uplink validate --config /etc/uplink/uplink.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	origins := "same-origin only"
	if len(cfg.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.AllowedOrigins, ", ")
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Port:           %d\n", cfg.Port)
	fmt.Printf("  Origins:        %s\n", origins)
	fmt.Printf("  Shutdown grace: %s\n", cfg.ShutdownGrace.Duration())

	return nil
}
