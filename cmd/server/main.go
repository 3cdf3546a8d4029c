package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pharmaguard-server/internal/api"
	"github.com/pharmaguard-server/internal/app"
	"github.com/pharmaguard-server/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "PharmaGuard HTTP API server",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "path to config.yaml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load configuration
	configManager, err := config.NewManager(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := configManager.GetConfig()
	logger := config.NewLogger(cfg.Logging, os.Stderr)

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.WithError(err).Warn("Failed to release resources")
		}
	}()

	logger.WithField("remote_generation", application.Explainer.RemoteEnabled()).
		Infof("Starting PharmaGuard server on %s:%d", cfg.Server.Host, cfg.Server.Port)

	server := api.NewServer(configManager, logger, application)
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server failed")
		return err
	}

	logger.Info("Server stopped")
	return nil
}
