package service

import (
	"fmt"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

const (
	maxContextVariants = 3

	systemInstruction = "You are an expert clinical pharmacogenomics specialist providing evidence-based explanations for genetic drug metabolism profiles."

	promptTemplate = `You are a clinical pharmacogenomics expert. Provide a comprehensive explanation for a patient's pharmacogenomic risk assessment.

PATIENT PROFILE:
- Drug: %s
- Metabolizer Phenotype: %s
- Risk Level: %s
- Primary Gene: %s
- Detected Variants: %s

Please provide exactly 4 sections:

1. SUMMARY: A concise 2-3 sentence clinical summary and significance.
2. MECHANISM: A 3-4 sentence explanation of the molecular/enzymatic mechanism.
3. RISK_RATIONALE: A 3-4 sentence explanation of why this phenotype creates the identified risk.
4. PATIENT_FRIENDLY: A 2-3 sentence explanation for non-scientific patients, avoiding jargon.

Format response as:
SUMMARY: [text]
MECHANISM: [text]
RISK_RATIONALE: [text]
PATIENT_FRIENDLY: [text]`
)

// BuildVariantContext describes up to three variants of gene for the prompt
func BuildVariantContext(variants []domain.AnnotatedVariant, gene string) string {
	var parts []string
	for _, v := range variants {
		if v.Gene != gene {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s (%s): %s",
			orDefault(v.StarAllele, "?"),
			orDefault(v.RSID, "?"),
			orDefault(v.Effect, "Unknown effect"),
		))
		if len(parts) == maxContextVariants {
			break
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("No known variants detected in %s", gene)
	}
	return strings.Join(parts, "; ")
}

// BuildPrompt renders the user prompt for req with a precomputed variant context
func BuildPrompt(req *domain.ExplanationRequest, variantContext string) string {
	return fmt.Sprintf(promptTemplate, req.Drug, req.Phenotype, req.RiskLabel, req.Gene, variantContext)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
