package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pharmaguard-server/internal/app"
	"github.com/pharmaguard-server/internal/config"
)

// options holds the global flags shared by every subcommand
type options struct {
	configFile string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "pgxctl",
		Short: "PharmaGuard pharmacogenomics toolkit",
		Long: `pgxctl annotates VCF files against the built-in pharmacogenomic knowledge base
and produces clinical explanations for drug/phenotype pairs.

Explanations are generated remotely when an API key is configured
(OPENAI_API_KEY or llm.api_key) and otherwise come from the offline table.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	rootCmd.AddCommand(
		newParseCmd(opts),
		newExplainCmd(opts),
		newKBCmd(),
		newDrugsCmd(opts),
		newSetupCmd(),
	)
	return rootCmd
}

// loadApp builds the application from configuration. Logs go to the command's stderr.
func loadApp(ctx context.Context, cmd *cobra.Command, opts *options) (*app.App, error) {
	configManager, err := config.NewManager(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := configManager.GetConfig()
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := configManager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger := config.NewLogger(cfg.Logging, cmd.ErrOrStderr())
	return app.New(ctx, cfg, logger)
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
