// Package domain contains the core entities for pharmacogenomic variant annotation
// and clinical explanation generation.
//
// A variant-call file is parsed into AnnotatedVariant records using a curated
// knowledge base of pharmacogene star alleles. A drug/phenotype pair is then
// explained in four sections, either by a chat-completion model or by a fixed
// table of reviewed explanations.
package domain

import (
	"fmt"
	"strings"
)

// PhenotypeClass is the coarse metabolizer category derived from genotype.
type PhenotypeClass string

const (
	PoorMetabolizer         PhenotypeClass = "PM"
	IntermediateMetabolizer PhenotypeClass = "IM"
	NormalMetabolizer       PhenotypeClass = "NM"
	RapidMetabolizer        PhenotypeClass = "RM"
	UnknownPhenotype        PhenotypeClass = "Unknown"
)

// IsValid checks if the phenotype class is one of the known values
func (p PhenotypeClass) IsValid() bool {
	switch p {
	case PoorMetabolizer, IntermediateMetabolizer, NormalMetabolizer, RapidMetabolizer, UnknownPhenotype:
		return true
	default:
		return false
	}
}

// Description returns a human readable name for the phenotype class
func (p PhenotypeClass) Description() string {
	switch p {
	case PoorMetabolizer:
		return "Poor Metabolizer"
	case IntermediateMetabolizer:
		return "Intermediate Metabolizer"
	case NormalMetabolizer:
		return "Normal Metabolizer"
	case RapidMetabolizer:
		return "Rapid Metabolizer"
	default:
		return "Unknown"
	}
}

// ParsePhenotypeClass converts a string to a PhenotypeClass.
// Matching is case-insensitive for the four metabolizer codes.
func ParsePhenotypeClass(s string) (PhenotypeClass, error) {
	trimmed := strings.TrimSpace(s)
	upper := PhenotypeClass(strings.ToUpper(trimmed))
	switch upper {
	case PoorMetabolizer, IntermediateMetabolizer, NormalMetabolizer, RapidMetabolizer:
		return upper, nil
	}
	if strings.EqualFold(trimmed, string(UnknownPhenotype)) {
		return UnknownPhenotype, nil
	}
	return "", fmt.Errorf("invalid phenotype class: %q", s)
}
