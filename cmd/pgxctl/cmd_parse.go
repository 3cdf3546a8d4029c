package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file|->",
		Short: "Annotate a VCF file against the knowledge base",
		Long: `Reads a VCF file (or stdin when the argument is "-") and prints the
parse result as JSON: annotated variants, per-line errors and the success flag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			application, err := loadApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			return writeJSON(cmd.OutOrStdout(), application.Annotator.Parse(content))
		},
	}
}

// readInput reads a file path, or the command's stdin for "-"
func readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
