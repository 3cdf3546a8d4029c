package knowledgebase

import "strings"

// primaryGenes maps each supported drug to the pharmacogene that dominates its response
var primaryGenes = map[string]string{
	"CODEINE":      "CYP2D6",
	"CLOPIDOGREL":  "CYP2C19",
	"WARFARIN":     "CYP2C9",
	"SIMVASTATIN":  "SLCO1B1",
	"AZATHIOPRINE": "TPMT",
	"FLUOROURACIL": "DPYD",
}

// DrugInfo describes a supported drug
type DrugInfo struct {
	Name        string   `json:"name"`
	PrimaryGene string   `json:"primary_gene"`
	Phenotypes  []string `json:"phenotypes"`
}

// PrimaryGene returns the primary pharmacogene for a drug name, case-insensitively
func PrimaryGene(drug string) (string, bool) {
	gene, ok := primaryGenes[strings.ToUpper(strings.TrimSpace(drug))]
	return gene, ok
}

// SupportedDrugs lists the drugs covered by the fallback table with their primary gene
func SupportedDrugs(table *FallbackTable) []DrugInfo {
	drugs := table.Drugs()
	out := make([]DrugInfo, 0, len(drugs))
	for _, name := range drugs {
		gene, _ := PrimaryGene(name)
		out = append(out, DrugInfo{
			Name:        name,
			PrimaryGene: gene,
			Phenotypes:  table.Phenotypes(name),
		})
	}
	return out
}
