package domain

// Annotation defaults applied when a record cannot be matched against the knowledge base.
const (
	UnknownValue             = "Unknown"
	UnknownZygosity          = "unknown"
	UnknownRSID              = "unknown"
	NovelVariantSignificance = "Novel or uncharacterized variant"
	GeneOnlySignificance     = "Annotated by gene only"
)

// KnowledgeBaseEntry is a curated pharmacogenomic annotation for a single variant identifier
type KnowledgeBaseEntry struct {
	RSID           string         `json:"rsid"`
	Gene           string         `json:"gene"`
	StarAllele     string         `json:"star"`
	Effect         string         `json:"effect"`
	Zygosity       string         `json:"zygosity"`
	Significance   string         `json:"significance"`
	PhenotypeClass PhenotypeClass `json:"phenotype_class"`
	// Activity is nil when the activity score is not quantified.
	Activity *float64 `json:"activity"`
}

// RawRecord holds the positional fields of one data line of a variant-call file
type RawRecord struct {
	Chromosome  string
	Position    string
	ID          string
	Reference   string
	Alternative string
	Info        string
}

// AnnotatedVariant is a variant record merged with its knowledge base annotation
type AnnotatedVariant struct {
	RSID                 string         `json:"rsid"`
	Chromosome           string         `json:"chrom"`
	Position             string         `json:"pos"`
	Reference            string         `json:"ref"`
	Alternative          string         `json:"alt"`
	Gene                 string         `json:"gene"`
	StarAllele           string         `json:"star_allele"`
	Effect               string         `json:"effect"`
	Zygosity             string         `json:"zygosity"`
	ClinicalSignificance string         `json:"clinical_significance"`
	PhenotypeClass       PhenotypeClass `json:"phenotype_class"`
	Activity             *float64       `json:"activity"`
}

// ParseResult is the outcome of parsing a variant-call file.
// Success is false only when no variant was extracted from an input of 20 lines or more.
type ParseResult struct {
	Variants []AnnotatedVariant `json:"variants"`
	Success  bool               `json:"success"`
	Errors   []string           `json:"errors"`
}

// VariantsForGene returns the variants annotated with the given gene, in input order
func (r *ParseResult) VariantsForGene(gene string) []AnnotatedVariant {
	var out []AnnotatedVariant
	for _, v := range r.Variants {
		if v.Gene == gene {
			out = append(out, v)
		}
	}
	return out
}

// Float64 returns a pointer to v, for building activity scores
func Float64(v float64) *float64 {
	return &v
}
