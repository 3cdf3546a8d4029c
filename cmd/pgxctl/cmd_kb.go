package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/knowledgebase"
)

func newKBCmd() *cobra.Command {
	var gene string

	cmd := &cobra.Command{
		Use:   "kb",
		Short: "List knowledge base entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := knowledgebase.LoadEmbedded()
			if err != nil {
				return err
			}

			entries := kb.Entries()
			if gene != "" {
				filtered := make([]domain.KnowledgeBaseEntry, 0, len(entries))
				for _, entry := range entries {
					if strings.EqualFold(entry.Gene, gene) {
						filtered = append(filtered, entry)
					}
				}
				entries = filtered
			}
			return writeJSON(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().StringVar(&gene, "gene", "", "only list entries for this gene")
	return cmd
}

func newDrugsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "drugs",
		Short: "List drugs with offline explanations and their primary gene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := loadApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			return writeJSON(cmd.OutOrStdout(), knowledgebase.SupportedDrugs(application.Fallback))
		},
	}
}
