package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/upwatch/uplink"
	"github.com/upwatch/uplink/config"
)

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// serveCmd starts the realtime gateway.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the realtime gateway",
	Long: `Start the UpLink realtime gateway.

The gateway will:
  - Load configuration from the specified YAML file
  - Read the domain JWT secrets from the environment
  - Serve websocket clients on /ws and scheduler events on /api/events

The server runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  uplink serve -c uplink.yaml
  uplink serve --config /etc/uplink/uplink.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	secrets, err := config.LoadSecrets()
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	logger.Info("config loaded",
		"port", cfg.Port,
		"origins", len(cfg.AllowedOrigins),
		"domains", secrets.ConfiguredDomains(),
	)

	opts := []uplink.Option{
		uplink.WithPort(cfg.Port),
		uplink.WithSecrets(uplink.Secrets{
			User:        secrets.UserJWTSecret,
			Contributor: secrets.ContributorJWTSecret,
			Operator:    secrets.OperatorJWTSecret,
		}),
		// the standalone binary has no platform database behind it; the
		// memory store serves demos and smoke tests, SDK embedders pass
		// their own implementation
		uplink.WithStore(uplink.NewMemoryStore()),
		uplink.WithLogger(logger),
	}
	if len(cfg.AllowedOrigins) > 0 {
		opts = append(opts, uplink.WithAllowedOrigins(cfg.AllowedOrigins...))
	}

	gw, err := uplink.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// start gateway - blocks until context cancelled
	errChan := make(chan error, 1)
	go func() {
		errChan <- gw.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("gateway error: %w", err)
		}
		logger.Info("shutdown complete")
		return nil

	case <-ctx.Done():
		// signal received, wait for graceful shutdown with timeout
		select {
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("gateway error: %w", err)
			}
			logger.Info("shutdown complete")
			return nil
		case <-time.After(cfg.ShutdownGrace.Duration()):
			logger.Warn("shutdown timed out",
				"timeout", cfg.ShutdownGrace.Duration().String(),
				"action", "forcing exit",
			)
			return nil
		}
	}
}
