package vcf

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/knowledgebase"
)

const vcfHeader = "##fileformat=VCFv4.2\n" +
	"##source=PharmaGuardTest\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

// panickingKB fails every lookup, for exercising per-line recovery
type panickingKB struct{}

func (panickingKB) Lookup(id string) (domain.KnowledgeBaseEntry, bool) {
	panic("knowledge base unavailable")
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	kb, err := knowledgebase.LoadEmbedded()
	require.NoError(t, err)
	return NewParser(kb)
}

func TestParse_KnownVariant(t *testing.T) {
	parser := newTestParser(t)

	result := parser.Parse("chr10\t96521657\trs1799853\tC\tT\t.\tPASS\tGENE=CYP2C9;STAR=*2;RS=rs1799853")

	require.Len(t, result.Variants, 1)
	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)

	v := result.Variants[0]
	assert.Equal(t, "rs1799853", v.RSID)
	assert.Equal(t, "chr10", v.Chromosome)
	assert.Equal(t, "96521657", v.Position)
	assert.Equal(t, "C", v.Reference)
	assert.Equal(t, "T", v.Alternative)
	assert.Equal(t, "CYP2C9", v.Gene)
	assert.Equal(t, "*2", v.StarAllele)
	assert.Equal(t, domain.IntermediateMetabolizer, v.PhenotypeClass)
	require.NotNil(t, v.Activity)
	assert.InDelta(t, 0.7, *v.Activity, 1e-9)
}

func TestParse_KnowledgeBaseFieldsWithoutOverrides(t *testing.T) {
	kb := knowledgebase.MustLoadEmbedded()
	parser := NewParser(kb)

	for _, entry := range kb.Entries() {
		t.Run(entry.RSID, func(t *testing.T) {
			line := fmt.Sprintf("chr1\t100\t%s\tA\tG\t.\tPASS\tDP=30", entry.RSID)
			result := parser.Parse(line)
			require.Len(t, result.Variants, 1)

			v := result.Variants[0]
			assert.Equal(t, entry.Gene, v.Gene)
			assert.Equal(t, entry.StarAllele, v.StarAllele)
			assert.Equal(t, entry.Effect, v.Effect)
			assert.Equal(t, entry.Zygosity, v.Zygosity)
			assert.Equal(t, entry.Significance, v.ClinicalSignificance)
			assert.Equal(t, entry.PhenotypeClass, v.PhenotypeClass)
			assert.Equal(t, entry.Activity, v.Activity)
		})
	}
}

func TestParse_AnnotationOverridesGeneAndStar(t *testing.T) {
	parser := newTestParser(t)

	result := parser.Parse("chr22\t42130692\trs3892097\tG\tA\t.\tPASS\tgene=CYP2D6-ALT;Star=*4A")
	require.Len(t, result.Variants, 1)

	v := result.Variants[0]
	assert.Equal(t, "CYP2D6-ALT", v.Gene)
	assert.Equal(t, "*4A", v.StarAllele)
	assert.Equal(t, "Loss of function", v.Effect)
	assert.Equal(t, domain.PoorMetabolizer, v.PhenotypeClass)
}

func TestParse_RSFromInfoTakesPrecedence(t *testing.T) {
	parser := newTestParser(t)

	result := parser.Parse("chr10\t94781859\t.\tG\tA\t.\tPASS\trs=RS4244285")
	require.Len(t, result.Variants, 1)
	assert.Equal(t, "rs4244285", result.Variants[0].RSID)
	assert.Equal(t, "CYP2C19", result.Variants[0].Gene)
}

func TestParse_NovelVariant(t *testing.T) {
	parser := newTestParser(t)

	tests := []struct {
		name string
		line string
		gene string
		star string
	}{
		{"no annotation", "chr1\t12345\trs999999\tA\tG\t.\tPASS\tDP=10", "Unknown", "Unknown"},
		{"with gene", "chr1\t12345\trs999999\tA\tG\t.\tPASS\tGENE=CYP2D6", "CYP2D6", "Unknown"},
		{"with gene and star", "chr1\t12345\trs999999\tA\tG\t.\tPASS\tGENE=CYP2D6;STAR=*41", "CYP2D6", "*41"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.line)
			require.Len(t, result.Variants, 1)

			v := result.Variants[0]
			assert.Equal(t, "rs999999", v.RSID)
			assert.Equal(t, tt.gene, v.Gene)
			assert.Equal(t, tt.star, v.StarAllele)
			assert.Equal(t, "Unknown", v.Effect)
			assert.Equal(t, "unknown", v.Zygosity)
			assert.Equal(t, "Novel or uncharacterized variant", v.ClinicalSignificance)
			assert.Equal(t, domain.UnknownPhenotype, v.PhenotypeClass)
			assert.Nil(t, v.Activity)
		})
	}
}

func TestParse_GeneOnlyVariant(t *testing.T) {
	parser := newTestParser(t)

	result := parser.Parse("chr13\t31000000\t.\tT\tC\t.\tPASS\tGENE=TPMT;STAR=*3A")
	require.Len(t, result.Variants, 1)

	v := result.Variants[0]
	assert.Equal(t, "unknown", v.RSID)
	assert.Equal(t, "TPMT", v.Gene)
	assert.Equal(t, "*3A", v.StarAllele)
	assert.Equal(t, "Annotated by gene only", v.ClinicalSignificance)
	assert.Equal(t, domain.UnknownPhenotype, v.PhenotypeClass)
	assert.Nil(t, v.Activity)
}

func TestParse_DropsLinesWithoutIdentifierOrGene(t *testing.T) {
	parser := newTestParser(t)

	result := parser.Parse("chr1\t100\t.\tA\tG\t.\tPASS\tDP=12\nchr1\t200\tesv123\tA\tG\t.\tPASS\t.")
	assert.Empty(t, result.Variants)
	assert.Empty(t, result.Errors)
	assert.True(t, result.Success)
}

func TestParse_InsufficientFields(t *testing.T) {
	parser := newTestParser(t)

	input := vcfHeader +
		"chr10\t96521657\trs1799853\tC\tT\n" +
		"chr10\t96741053\trs1057910\tA\tC\t.\tPASS\tGENE=CYP2C9"

	result := parser.Parse(input)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Line 4: insufficient fields", result.Errors[0])
	assert.Contains(t, result.Errors[0], "insufficient fields")

	require.Len(t, result.Variants, 1)
	assert.Equal(t, "rs1057910", result.Variants[0].RSID)
}

func TestParse_SkipsCommentsAndBlankLines(t *testing.T) {
	parser := newTestParser(t)

	input := "##fileformat=VCFv4.2\n\n   \n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"# free-form comment\n" +
		"chr19\t15990431\trs16947\tG\tA\t.\tPASS\tGENE=CYP2D6\r\n"

	result := parser.Parse(input)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Variants, 1)
	assert.Equal(t, "rs16947", result.Variants[0].RSID)
	assert.Equal(t, domain.NormalMetabolizer, result.Variants[0].PhenotypeClass)
}

func TestParse_RecoversFromLinePanics(t *testing.T) {
	parser := NewParser(panickingKB{})

	input := "chr1\t100\trs1\tA\tG\t.\tPASS\t.\n" +
		"chr1\t200\t.\tA\tG\t.\tPASS\tGENE=DPYD"

	result := parser.Parse(input)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Line 1: knowledge base unavailable", result.Errors[0])

	require.Len(t, result.Variants, 1)
	assert.Equal(t, "DPYD", result.Variants[0].Gene)
}

func TestParse_SuccessFlag(t *testing.T) {
	parser := newTestParser(t)

	unmatched := "chr1\t100\t.\tA\tG\t.\tPASS\tDP=1"
	known := "chr10\t96521657\trs1799853\tC\tT\t.\tPASS\tGENE=CYP2C9"

	tests := []struct {
		name    string
		input   string
		success bool
	}{
		{"empty input", "", true},
		{"short input without variants", strings.Repeat(unmatched+"\n", 10), true},
		{"19 lines without variants", strings.Repeat(unmatched+"\n", 18) + unmatched, true},
		{"20 lines without variants", strings.Repeat(unmatched+"\n", 19) + unmatched, false},
		{"20 lines counting trailing newline", strings.Repeat(unmatched+"\n", 19), false},
		{"long input of malformed lines", strings.Repeat("bad line\n", 30), false},
		{"long input with one variant", strings.Repeat(unmatched+"\n", 30) + known, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parser.Parse(tt.input)
			assert.Equal(t, tt.success, result.Success)
		})
	}
}

func TestParse_ResultSlicesAreNeverNil(t *testing.T) {
	parser := newTestParser(t)

	result := parser.Parse("")
	assert.NotNil(t, result.Variants)
	assert.NotNil(t, result.Errors)
}

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name  string
		block string
		key   string
		want  string
	}{
		{"upper-case key", "GENE=CYP2D6", "gene", "CYP2D6"},
		{"lower-case key", "gene=CYP2D6", "GENE", "CYP2D6"},
		{"mixed-case key", "Star=*4", "STAR", "*4"},
		{"value is trimmed", "RS= rs16947 ", "rs", "rs16947"},
		{"key is trimmed", "DP=10; GENE=TPMT", "GENE", "TPMT"},
		{"flag token ignored", "DB;GENE=DPYD", "DB", ""},
		{"value stops at second equals", "NOTE=a=b", "NOTE", "a"},
		{"last duplicate wins", "GENE=A;gene=B", "GENE", "B"},
		{"empty block", "", "GENE", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseInfo(tt.block)
			assert.Equal(t, tt.want, info.Get(tt.key))
		})
	}
}

func TestParseRecord(t *testing.T) {
	record, err := ParseRecord("chr16\t69745145\trs1800462\tC\tG\t50\tPASS\tGENE=TPMT\tGT\t0/1")
	require.NoError(t, err)
	assert.Equal(t, domain.RawRecord{
		Chromosome:  "chr16",
		Position:    "69745145",
		ID:          "rs1800462",
		Reference:   "C",
		Alternative: "G",
		Info:        "GENE=TPMT",
	}, record)

	_, err = ParseRecord("chr16\t69745145\trs1800462\tC\tG")
	assert.ErrorIs(t, err, ErrInsufficientFields)
}
