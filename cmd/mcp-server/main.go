package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pharmaguard-server/internal/app"
	"github.com/pharmaguard-server/internal/config"
	"github.com/pharmaguard-server/internal/mcp"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:          "mcp-server",
	Short:        "PharmaGuard MCP server over stdio",
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
	configManager, err := config.NewManager(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := configManager.GetConfig()
	// stdout carries the protocol
	logger := config.NewLogger(cfg.Logging, os.Stderr)

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

	if err := mcp.NewServer(&cfg.MCP, logger, application).Run(ctx); err != nil {
		logger.WithError(err).Error("MCP server failed")
		return err
	}

	logger.Info("PharmaGuard MCP server stopped")
	return nil
}
