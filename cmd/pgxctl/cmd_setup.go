package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pharmaguard-server/internal/setup"
)

// passthroughEnv lists variables copied into the Claude Desktop entry when set
var passthroughEnv = []string{
	"OPENAI_API_KEY",
	"OPENAI_MODEL",
	"PHARMAGUARD_LLM_BASE_URL",
	"PHARMAGUARD_FALLBACK_OVERRIDE_FILE",
}

func newSetupCmd() *cobra.Command {
	var desktopConfig string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the MCP server with Claude Desktop",
		Long: `Manage the pharmaguard entry in Claude Desktop's configuration.

Available subcommands:
  claude-desktop - Add or update the entry
  remove         - Delete the entry
  status         - Show the current registration`,
	}
	cmd.PersistentFlags().StringVar(&desktopConfig, "desktop-config", "", "Claude Desktop config path (defaults to the OS location)")

	resolvePath := func() (string, error) {
		if desktopConfig != "" {
			return desktopConfig, nil
		}
		return setup.GetClaudeDesktopConfigPath()
	}

	var (
		binaryPath string
		serverCfg  string
	)
	configureCmd := &cobra.Command{
		Use:   "claude-desktop",
		Short: "Add or update the pharmaguard MCP server entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}

			env := make(map[string]string)
			for _, key := range passthroughEnv {
				if value := os.Getenv(key); value != "" {
					env[key] = value
				}
			}

			serverConfig, err := setup.Configure(path, setup.Options{
				BinaryPath: binaryPath,
				ConfigFile: serverCfg,
				Env:        env,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configured %q in %s\n", setup.ServerName, path)
			fmt.Fprintf(out, "  command: %s\n", serverConfig.Command)
			for key := range serverConfig.Env {
				fmt.Fprintf(out, "  env: %s\n", key)
			}
			fmt.Fprintln(out, "Restart Claude Desktop to load the server.")
			return nil
		},
	}
	configureCmd.Flags().StringVar(&binaryPath, "binary", "", "path to the mcp-server binary (searched for when empty)")
	configureCmd.Flags().StringVar(&serverCfg, "server-config", "", "config.yaml passed to the server with --config")

	removeCmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the pharmaguard MCP server entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			removed, err := setup.Remove(path)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %s\n", setup.ServerName, path)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the registration status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolvePath()
			if err != nil {
				return err
			}
			status, err := setup.GetStatus(path)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), status)
		},
	}

	cmd.AddCommand(configureCmd, removeCmd, statusCmd)
	return cmd
}
