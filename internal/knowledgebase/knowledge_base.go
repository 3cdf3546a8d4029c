// Package knowledgebase holds the embedded reference tables: curated pharmacogene
// variant annotations and reviewed fallback explanations. Both tables are built once
// and are read-only afterwards, so they are safe for concurrent use without locking.
package knowledgebase

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pharmaguard-server/internal/domain"
)

//go:embed data/variants.json
var embeddedVariants []byte

// KnowledgeBase maps lower-case variant identifiers to curated annotations
type KnowledgeBase struct {
	entries map[string]domain.KnowledgeBaseEntry
}

// NewKnowledgeBase builds a knowledge base from the given entries.
// Identifiers are normalized to lower case; a later duplicate replaces an earlier one.
func NewKnowledgeBase(entries []domain.KnowledgeBaseEntry) *KnowledgeBase {
	kb := &KnowledgeBase{entries: make(map[string]domain.KnowledgeBaseEntry, len(entries))}
	for _, e := range entries {
		key := normalizeID(e.RSID)
		if key == "" {
			continue
		}
		e.RSID = key
		if e.Activity != nil {
			e.Activity = domain.Float64(*e.Activity)
		}
		kb.entries[key] = e
	}
	return kb
}

// LoadEmbedded builds the knowledge base from the table compiled into the binary
func LoadEmbedded() (*KnowledgeBase, error) {
	return Decode(embeddedVariants)
}

// MustLoadEmbedded is LoadEmbedded for process start-up, where a broken embedded table is a build defect
func MustLoadEmbedded() *KnowledgeBase {
	kb, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return kb
}

// Decode builds a knowledge base from a JSON array of entries
func Decode(data []byte) (*KnowledgeBase, error) {
	var entries []domain.KnowledgeBaseEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding knowledge base: %w", err)
	}
	for i, e := range entries {
		if e.RSID == "" {
			return nil, fmt.Errorf("decoding knowledge base: entry %d has no rsid", i)
		}
		if !e.PhenotypeClass.IsValid() {
			return nil, fmt.Errorf("decoding knowledge base: entry %s has invalid phenotype class %q", e.RSID, e.PhenotypeClass)
		}
	}
	return NewKnowledgeBase(entries), nil
}

// Lookup returns the entry for an identifier. Matching is exact after lower-casing.
func (kb *KnowledgeBase) Lookup(id string) (domain.KnowledgeBaseEntry, bool) {
	e, ok := kb.entries[strings.ToLower(id)]
	if !ok {
		return domain.KnowledgeBaseEntry{}, false
	}
	if e.Activity != nil {
		e.Activity = domain.Float64(*e.Activity)
	}
	return e, true
}

// Len returns the number of entries
func (kb *KnowledgeBase) Len() int {
	return len(kb.entries)
}

// Entries returns a copy of all entries ordered by gene, then identifier
func (kb *KnowledgeBase) Entries() []domain.KnowledgeBaseEntry {
	out := make([]domain.KnowledgeBaseEntry, 0, len(kb.entries))
	for _, e := range kb.entries {
		if e.Activity != nil {
			e.Activity = domain.Float64(*e.Activity)
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gene != out[j].Gene {
			return out[i].Gene < out[j].Gene
		}
		return out[i].RSID < out[j].RSID
	})
	return out
}

// Genes returns the distinct gene symbols covered by the table
func (kb *KnowledgeBase) Genes() []string {
	seen := make(map[string]struct{})
	var genes []string
	for _, e := range kb.entries {
		if _, ok := seen[e.Gene]; ok {
			continue
		}
		seen[e.Gene] = struct{}{}
		genes = append(genes, e.Gene)
	}
	sort.Strings(genes)
	return genes
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
