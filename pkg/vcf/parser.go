// Package vcf parses tab-separated variant-call text into pharmacogenomic annotations.
//
// Only the first eight columns are read. The INFO column is consulted for the GENE,
// STAR and RS keys; everything else a full VCF reader would check is out of scope.
package vcf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

const (
	metaPrefix   = "##"
	headerPrefix = "#CHROM"

	// minFields is the number of fixed VCF columns up to and including INFO
	minFields = 8

	// lenientLineCount is the line count below which an input with no recognized
	// variants is still reported as a successful parse
	lenientLineCount = 20

	rsPrefix = "rs"
)

// ErrInsufficientFields is reported for data lines with fewer than eight columns
var ErrInsufficientFields = errors.New("insufficient fields")

// Info is a parsed INFO column. Keys are stored upper-cased so lookups are case-insensitive.
type Info map[string]string

// Get returns the trimmed value for key, matching case-insensitively
func (i Info) Get(key string) string {
	return i[strings.ToUpper(key)]
}

// ParseInfo splits a semicolon-separated KEY=value block. Tokens without '=' are
// ignored; with several '=' the value stops at the second one.
func ParseInfo(block string) Info {
	info := make(Info)
	if block == "" {
		return info
	}
	for _, item := range strings.Split(block, ";") {
		if !strings.Contains(item, "=") {
			continue
		}
		parts := strings.SplitN(item, "=", 3)
		key := strings.ToUpper(strings.TrimSpace(parts[0]))
		info[key] = strings.TrimSpace(parts[1])
	}
	return info
}

// Parser annotates variant-call text against a knowledge base
type Parser struct {
	kb domain.VariantKnowledgeBase
}

// NewParser creates a parser reading annotations from kb
func NewParser(kb domain.VariantKnowledgeBase) *Parser {
	return &Parser{kb: kb}
}

// Parse annotates every data line of text. It never fails: malformed lines are
// reported in ParseResult.Errors and skipped.
func (p *Parser) Parse(text string) domain.ParseResult {
	lines := strings.Split(text, "\n")
	result := domain.ParseResult{
		Variants: []domain.AnnotatedVariant{},
		Errors:   []string{},
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || isComment(line) {
			continue
		}

		variant, err := p.parseLine(line)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Line %d: %s", i+1, err.Error()))
			continue
		}
		if variant != nil {
			result.Variants = append(result.Variants, *variant)
		}
	}

	result.Success = len(result.Variants) > 0 || len(lines) < lenientLineCount
	return result
}

// parseLine returns a nil variant without error for lines that carry neither an
// rsID nor a gene
func (p *Parser) parseLine(line string) (variant *domain.AnnotatedVariant, err error) {
	defer func() {
		if r := recover(); r != nil {
			variant = nil
			err = fmt.Errorf("%v", r)
		}
	}()

	record, err := ParseRecord(line)
	if err != nil {
		return nil, err
	}
	return p.Annotate(record), nil
}

// ParseRecord splits one data line into its positional fields
func ParseRecord(line string) (domain.RawRecord, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return domain.RawRecord{}, ErrInsufficientFields
	}
	return domain.RawRecord{
		Chromosome:  fields[0],
		Position:    fields[1],
		ID:          fields[2],
		Reference:   fields[3],
		Alternative: fields[4],
		Info:        fields[7],
	}, nil
}

// Annotate merges a record with its knowledge base entry or with unknown defaults.
// It returns nil when the record has neither a usable rsID nor a gene.
func (p *Parser) Annotate(record domain.RawRecord) *domain.AnnotatedVariant {
	info := ParseInfo(record.Info)

	rsid := info.Get("RS")
	if rsid == "" {
		rsid = record.ID
	}
	rsid = strings.ToLower(rsid)
	gene := info.Get("GENE")
	star := info.Get("STAR")

	variant := &domain.AnnotatedVariant{
		RSID:        rsid,
		Chromosome:  record.Chromosome,
		Position:    record.Position,
		Reference:   record.Reference,
		Alternative: record.Alternative,
	}

	switch {
	case strings.HasPrefix(rsid, rsPrefix):
		if entry, ok := p.kb.Lookup(rsid); ok {
			variant.Gene = firstNonEmpty(gene, entry.Gene)
			variant.StarAllele = firstNonEmpty(star, entry.StarAllele)
			variant.Effect = entry.Effect
			variant.Zygosity = entry.Zygosity
			variant.ClinicalSignificance = entry.Significance
			variant.PhenotypeClass = entry.PhenotypeClass
			variant.Activity = entry.Activity
			return variant
		}
		applyUnknown(variant, gene, star, domain.NovelVariantSignificance)
		return variant
	case gene != "":
		variant.RSID = domain.UnknownRSID
		applyUnknown(variant, gene, star, domain.GeneOnlySignificance)
		return variant
	default:
		return nil
	}
}

// isComment matches ## meta lines, the #CHROM header and any other '#' line
func isComment(line string) bool {
	return strings.HasPrefix(line, metaPrefix) || strings.HasPrefix(line, headerPrefix) || strings.HasPrefix(line, "#")
}

func applyUnknown(v *domain.AnnotatedVariant, gene, star, significance string) {
	v.Gene = firstNonEmpty(gene, domain.UnknownValue)
	v.StarAllele = firstNonEmpty(star, domain.UnknownValue)
	v.Effect = domain.UnknownValue
	v.Zygosity = domain.UnknownZygosity
	v.ClinicalSignificance = significance
	v.PhenotypeClass = domain.UnknownPhenotype
	v.Activity = nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
