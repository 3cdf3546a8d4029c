package knowledgebase

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

//go:embed data/fallback_explanations.json
var embeddedFallback []byte

// GenericExplanation is returned for drugs the table does not cover
var GenericExplanation = domain.ExplanationSections{
	Summary:         "Pharmacogenomic analysis complete. Consult with your healthcare provider for personalized recommendations.",
	Mechanism:       "Genetic variants affect drug-metabolizing enzyme activity, influencing drug response.",
	RiskRationale:   "Risk assessment based on CPIC guidelines and current clinical evidence.",
	PatientFriendly: "Your genetic test provides information to help your doctor choose the safest and most effective medication for you.",
}

// StandardMetabolismExplanation is returned for a covered drug that has neither the
// requested phenotype nor a normal metabolizer entry
var StandardMetabolismExplanation = domain.ExplanationSections{
	Summary:         "Pharmacogenomic analysis complete.",
	Mechanism:       "Standard drug metabolism expected.",
	RiskRationale:   "No high-risk variants detected.",
	PatientFriendly: "Your genetic profile shows standard drug metabolism for this medication.",
}

// FallbackMatch describes how a fallback explanation was resolved
type FallbackMatch string

const (
	MatchExact              FallbackMatch = "exact"
	MatchNormalMetabolizer  FallbackMatch = "normal_metabolizer"
	MatchStandardMetabolism FallbackMatch = "standard_metabolism"
	MatchGeneric            FallbackMatch = "generic"
)

// FallbackTable maps upper-case drug names and phenotype codes to explanations
type FallbackTable struct {
	drugs map[string]map[string]domain.ExplanationSections
}

// NewFallbackTable builds a table, upper-casing drug and phenotype keys
func NewFallbackTable(entries map[string]map[string]domain.ExplanationSections) *FallbackTable {
	t := &FallbackTable{drugs: make(map[string]map[string]domain.ExplanationSections, len(entries))}
	for drug, phenotypes := range entries {
		byPhenotype := make(map[string]domain.ExplanationSections, len(phenotypes))
		for phenotype, sections := range phenotypes {
			byPhenotype[strings.ToUpper(phenotype)] = sections
		}
		t.drugs[strings.ToUpper(drug)] = byPhenotype
	}
	return t
}

// DecodeFallback builds a table from its JSON form: {"DRUG": {"PM": {...sections}}}
func DecodeFallback(data []byte) (*FallbackTable, error) {
	var entries map[string]map[string]domain.ExplanationSections
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding fallback explanations: %w", err)
	}
	return NewFallbackTable(entries), nil
}

// LoadEmbeddedFallback builds the table compiled into the binary
func LoadEmbeddedFallback() (*FallbackTable, error) {
	return DecodeFallback(embeddedFallback)
}

// LoadFallback loads the override file when one is configured. A missing or
// malformed override is logged and the embedded table is used instead; if the
// embedded table itself cannot be decoded the table is empty and every lookup
// resolves to GenericExplanation.
func LoadFallback(overrideFile string, logger *logrus.Logger) *FallbackTable {
	if overrideFile != "" {
		table, err := loadFallbackFile(overrideFile)
		if err == nil {
			logger.WithFields(logrus.Fields{
				"file":  overrideFile,
				"drugs": len(table.drugs),
			}).Info("Loaded fallback explanations override")
			return table
		}
		logger.WithError(err).WithField("file", overrideFile).Warn("Failed to load fallback explanations override, using embedded table")
	}

	table, err := LoadEmbeddedFallback()
	if err != nil {
		logger.WithError(err).Warn("Failed to load embedded fallback explanations")
		return NewFallbackTable(nil)
	}
	return table
}

func loadFallbackFile(path string) (*FallbackTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fallback explanations: %w", err)
	}
	return DecodeFallback(data)
}

// Explain implements domain.FallbackExplanations
func (t *FallbackTable) Explain(drug, phenotype string) domain.ExplanationSections {
	sections, _ := t.Resolve(drug, phenotype)
	return sections
}

// Resolve looks up the upper-cased drug, then the upper-cased phenotype within it.
// An unknown phenotype resolves to the drug's NM entry when present.
func (t *FallbackTable) Resolve(drug, phenotype string) (domain.ExplanationSections, FallbackMatch) {
	byPhenotype, ok := t.drugs[strings.ToUpper(drug)]
	if !ok {
		return GenericExplanation, MatchGeneric
	}
	if sections, ok := byPhenotype[strings.ToUpper(phenotype)]; ok {
		return sections, MatchExact
	}
	if sections, ok := byPhenotype[string(domain.NormalMetabolizer)]; ok {
		return sections, MatchNormalMetabolizer
	}
	return StandardMetabolismExplanation, MatchStandardMetabolism
}

// Drugs returns the covered drug names in sorted order
func (t *FallbackTable) Drugs() []string {
	drugs := make([]string, 0, len(t.drugs))
	for drug := range t.drugs {
		drugs = append(drugs, drug)
	}
	sort.Strings(drugs)
	return drugs
}

// Phenotypes returns the phenotype codes covered for a drug in sorted order
func (t *FallbackTable) Phenotypes(drug string) []string {
	byPhenotype := t.drugs[strings.ToUpper(drug)]
	codes := make([]string, 0, len(byPhenotype))
	for code := range byPhenotype {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
