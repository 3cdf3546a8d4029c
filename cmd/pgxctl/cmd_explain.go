package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/knowledgebase"
)

func newExplainCmd(opts *options) *cobra.Command {
	var (
		req     domain.ExplanationRequest
		vcfPath string
	)

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Explain a drug/phenotype result",
		Long: `Produces the four-section clinical explanation (summary, mechanism,
risk_rationale, patient_friendly) for a drug and phenotype.

Example:
  pgxctl explain --drug CODEINE --phenotype PM --vcf sample.vcf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if errs := req.Validate(); len(errs) > 0 {
				return fmt.Errorf("invalid request: %w", errors.Join(errs...))
			}
			if req.Gene == "" {
				req.Gene, _ = knowledgebase.PrimaryGene(req.Drug)
			}

			var content string
			if vcfPath != "" {
				var err error
				if content, err = readInput(cmd, vcfPath); err != nil {
					return err
				}
			}

			application, err := loadApp(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer application.Close()

			if content != "" {
				req.Variants = application.Annotator.Parse(content).Variants
			}

			return writeJSON(cmd.OutOrStdout(), application.Explainer.Generate(cmd.Context(), &req))
		},
	}

	cmd.Flags().StringVar(&req.Drug, "drug", "", "drug name, e.g. CODEINE")
	cmd.Flags().StringVar(&req.Phenotype, "phenotype", "", "phenotype code, e.g. PM")
	cmd.Flags().StringVar(&req.RiskLabel, "risk", "", "risk label shown to the model")
	cmd.Flags().StringVar(&req.Gene, "gene", "", "gene; defaults to the drug's primary gene")
	cmd.Flags().StringVar(&vcfPath, "vcf", "", "VCF file whose variants give context (- for stdin)")
	return cmd
}
